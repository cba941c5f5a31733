package collector

import (
	"fmt"
	"time"

	"StockScreener/internal/config"
	"StockScreener/internal/model"
)

// Session is a [Start, End) window measured from local midnight.
type Session struct {
	Start time.Duration
	End   time.Duration
}

func (s Session) contains(tod time.Duration) bool {
	return tod >= s.Start && tod < s.End
}

// Partition is an ordered intraday session schedule in one timezone.
type Partition struct {
	Location *time.Location
	Sessions []Session
}

// NewPartition builds a Partition from "HH:MM" session bounds.
func NewPartition(timezone string, sessions []config.Session) (*Partition, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", timezone, err)
	}
	p := &Partition{Location: loc}
	for _, s := range sessions {
		start, err := config.ParseClock(s.Start)
		if err != nil {
			return nil, err
		}
		end, err := config.ParseClock(s.End)
		if err != nil {
			return nil, err
		}
		p.Sessions = append(p.Sessions, Session{Start: start, End: end})
	}
	return p, nil
}

// sessionOf returns the index of the first session containing t, or -1.
func (p *Partition) sessionOf(t time.Time) int {
	tod := time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute + time.Duration(t.Second())*time.Second
	for i, s := range p.Sessions {
		if s.contains(tod) {
			return i
		}
	}
	return -1
}

// segment is the running aggregate of one (day, session) bucket.
type segment struct {
	day     int
	session int
	bar     model.Bar

	trades   int64
	hasCount bool
	pv       float64 // sum of vwap*volume
	pvVolume int64
	hasVWAP  bool
}

func dayKey(t time.Time) int {
	return t.Year()*10000 + int(t.Month())*100 + t.Day()
}

func (p *Partition) open(local time.Time, idx int, b model.Bar) segment {
	start := p.Sessions[idx].Start
	ts := time.Date(local.Year(), local.Month(), local.Day(),
		int(start/time.Hour), int((start%time.Hour)/time.Minute), 0, 0, p.Location)

	seg := segment{
		day:     dayKey(local),
		session: idx,
		bar: model.Bar{
			Time:   ts,
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: b.Volume,
		},
	}
	return seg.withExtras(b)
}

// merge returns a new segment with b folded in.
func (s segment) merge(b model.Bar) segment {
	next := s
	if b.High > next.bar.High {
		next.bar.High = b.High
	}
	if b.Low < next.bar.Low {
		next.bar.Low = b.Low
	}
	next.bar.Close = b.Close
	next.bar.Volume += b.Volume
	return next.withExtras(b)
}

func (s segment) withExtras(b model.Bar) segment {
	if b.TradeCount != nil {
		s.trades += *b.TradeCount
		s.hasCount = true
	}
	if b.VWAP != nil {
		s.pv += *b.VWAP * float64(b.Volume)
		s.pvVolume += b.Volume
		s.hasVWAP = true
	}
	return s
}

func (s segment) finish() model.Bar {
	out := s.bar
	if s.hasCount {
		n := s.trades
		out.TradeCount = &n
	}
	if s.hasVWAP && s.pvVolume > 0 {
		vw := s.pv / float64(s.pvVolume)
		out.VWAP = &vw
	}
	return out
}

// Aggregate rebuckets ascending fine-grained bars into one bar per
// (local day, session). Bars outside every session are dropped.
func Aggregate(bars model.BarSeries, p *Partition) model.BarSeries {
	out := model.BarSeries{}
	var cur *segment

	for _, b := range bars {
		local := b.Time.In(p.Location)
		idx := p.sessionOf(local)
		if idx < 0 {
			continue
		}

		if cur != nil && cur.day == dayKey(local) && cur.session == idx {
			next := cur.merge(b)
			cur = &next
			continue
		}

		if cur != nil {
			out = append(out, cur.finish())
		}
		seg := p.open(local, idx, b)
		cur = &seg
	}
	if cur != nil {
		out = append(out, cur.finish())
	}
	return out
}
