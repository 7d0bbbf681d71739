// Package scanner runs the periodic pregnancy check. Each cycle loads the
// bred females, classifies them by days since breeding, and sends one digest
// to every registered chat when any doe is preparing to kindle or due soon.
//
// A failed or panicking cycle is logged and retried after Backoff; a
// successful one waits Interval. Run only returns when its context ends.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/tbourn/go-rabbitry/internal/domain"
	"github.com/tbourn/go-rabbitry/internal/notify"
)

// Defaults for Scanner timing.
const (
	DefaultInterval = 12 * time.Hour
	DefaultBackoff  = 60 * time.Second
)

var (
	scanCycles = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rabbitry_scan_cycles_total",
			Help: "Pregnancy scan cycles by result.",
		},
		[]string{"result"},
	)
	scanNotifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rabbitry_scan_notifications_total",
			Help: "Does reported by the pregnancy scan, by bucket.",
		},
		[]string{"bucket"},
	)
	deliveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rabbitry_notification_deliveries_total",
			Help: "Per-chat digest deliveries by result.",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(scanCycles, scanNotifications, deliveries)
}

// FemaleSource returns the candidates for a pregnancy check.
type FemaleSource interface {
	BredFemales(ctx context.Context) ([]domain.Rabbit, error)
}

// ChatLister returns every notification destination.
type ChatLister interface {
	List(ctx context.Context) ([]domain.ChatRegistration, error)
}

// Entry is one classified doe.
type Entry struct {
	Rabbit domain.Rabbit
	Status domain.PregnancyStatus
	Days   int
}

// Report summarizes one cycle.
type Report struct {
	Checked   int
	Entries   []Entry
	Text      string
	Chats     int
	Delivered int
	Failed    int
}

// Scanner periodically notifies chats about upcoming births.
type Scanner struct {
	Females FemaleSource
	Chats   ChatLister
	Sender  notify.Sender
	Printer *message.Printer

	Interval time.Duration
	Backoff  time.Duration

	// Now is the clock used for classification; defaults to time.Now.
	Now func() time.Time
}

func (s *Scanner) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// Run scans immediately and then on every Interval until ctx is done.
func (s *Scanner) Run(ctx context.Context) {
	interval, backoff := s.Interval, s.Backoff
	if interval <= 0 {
		interval = DefaultInterval
	}
	if backoff <= 0 {
		backoff = DefaultBackoff
	}
	log.Info().Dur("interval", interval).Dur("backoff", backoff).Msg("pregnancy scanner started")

	for {
		wait := interval
		if rep, err := s.safeRunOnce(ctx); err != nil {
			if ctx.Err() != nil {
				break
			}
			log.Error().Err(err).Dur("retry_in", backoff).Msg("pregnancy scan failed")
			wait = backoff
		} else {
			log.Info().
				Int("checked", rep.Checked).
				Int("reported", len(rep.Entries)).
				Int("delivered", rep.Delivered).
				Int("failed", rep.Failed).
				Msg("pregnancy scan complete")
		}

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			log.Info().Msg("pregnancy scanner stopped")
			return
		case <-t.C:
		}
	}
	log.Info().Msg("pregnancy scanner stopped")
}

// safeRunOnce converts a panic inside a cycle into an error.
func (s *Scanner) safeRunOnce(ctx context.Context) (rep Report, err error) {
	defer func() {
		if r := recover(); r != nil {
			scanCycles.WithLabelValues("panic").Inc()
			err = fmt.Errorf("scan panic: %v", r)
		}
	}()
	return s.RunOnce(ctx)
}

// RunOnce performs a single scan and delivery cycle. A store failure aborts
// the cycle; a failed delivery to one chat is logged and does not stop the
// others.
func (s *Scanner) RunOnce(ctx context.Context) (Report, error) {
	ctx, span := otel.Tracer("scanner").Start(ctx, "RunOnce")
	defer span.End()

	var rep Report
	females, err := s.Females.BredFemales(ctx)
	if err != nil {
		scanCycles.WithLabelValues("error").Inc()
		return rep, fmt.Errorf("load bred females: %w", err)
	}
	rep.Checked = len(females)
	rep.Entries = Classify(females, s.now())
	span.SetAttributes(
		attribute.Int("scan.checked", rep.Checked),
		attribute.Int("scan.reported", len(rep.Entries)),
	)
	if len(rep.Entries) == 0 {
		scanCycles.WithLabelValues("ok").Inc()
		return rep, nil
	}
	for _, e := range rep.Entries {
		scanNotifications.WithLabelValues(string(e.Status)).Inc()
	}

	p := s.Printer
	if p == nil {
		p = message.NewPrinter(language.English)
	}
	rep.Text = Digest(p, rep.Entries)

	chats, err := s.Chats.List(ctx)
	if err != nil {
		scanCycles.WithLabelValues("error").Inc()
		return rep, fmt.Errorf("list chats: %w", err)
	}
	rep.Chats = len(chats)
	for _, c := range chats {
		if err := s.deliver(ctx, c, rep.Text); err != nil {
			rep.Failed++
			deliveries.WithLabelValues("failed").Inc()
			log.Warn().Err(err).Int64("chat_id", c.ChatID).Str("chat_name", c.DisplayName()).Msg("notification delivery failed")
			continue
		}
		rep.Delivered++
		deliveries.WithLabelValues("delivered").Inc()
	}
	scanCycles.WithLabelValues("ok").Inc()
	return rep, nil
}

func (s *Scanner) deliver(ctx context.Context, c domain.ChatRegistration, text string) (err error) {
	ctx, span := otel.Tracer("scanner").Start(ctx, "deliver",
		trace.WithAttributes(attribute.Int64("chat.id", c.ChatID)),
	)
	defer span.End()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sender panic: %v", r)
		}
	}()
	if s.Sender == nil {
		return errors.New("no sender configured")
	}
	return s.Sender.Send(ctx, c.ChatID, text)
}

// Classify keeps occupied females whose breeding date puts them in the
// preparing or due-soon window at now, ordered by cage number.
func Classify(rabbits []domain.Rabbit, now time.Time) []Entry {
	var out []Entry
	for _, r := range rabbits {
		if r.IsEmpty || !r.IsFemale() || r.LastBreedingDate == nil {
			continue
		}
		status := r.PregnancyStatus(now)
		if status == domain.PregnancyNone {
			continue
		}
		d, _ := r.DaysSinceLastBreeding(now)
		out = append(out, Entry{Rabbit: r, Status: status, Days: d})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Rabbit.CageID < out[j].Rabbit.CageID })
	return out
}

// Line renders one entry.
func Line(p *message.Printer, e Entry) string {
	r := e.Rabbit
	if e.Status == domain.PregnancyDueSoon {
		return p.Sprintf("⚠️ Doe %s (cage %s) should kindle in the coming days! (last breeding %s)",
			r.Name, domain.CageNumber(r.CageID), r.LastBreedingDate.Format(time.DateOnly))
	}
	return p.Sprintf("ℹ️ Doe %s (cage %s) is preparing to kindle. About %d day(s) until birth.",
		r.Name, domain.CageNumber(r.CageID), domain.DueSoonFromDay-e.Days)
}

// Digest renders the header followed by one paragraph per entry.
func Digest(p *message.Printer, entries []Entry) string {
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, Line(p, e))
	}
	return p.Sprintf("🐇 Pregnant does update:") + "\n\n" + strings.Join(lines, "\n\n")
}
