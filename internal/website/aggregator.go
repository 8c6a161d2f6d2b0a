// Package website keeps the public website configuration document (website/gymProData)
// in step with the programs, gallery, testimonials and settings collections.
//
// SyncAll rebuilds every section; the Sync* methods rebuild one section each. All of them
// write with merge semantics, so fields owned by other writers survive.
package website

import (
	"context"
	"errors"
	"time"

	"github.com/htech-wordpress/vibefit-studio-admin/internal/logging"
	"github.com/htech-wordpress/vibefit-studio-admin/internal/metrics"
	"github.com/htech-wordpress/vibefit-studio-admin/internal/services"
	"github.com/htech-wordpress/vibefit-studio-admin/internal/store"
	"github.com/htech-wordpress/vibefit-studio-admin/pkg/models"

	"golang.org/x/sync/errgroup"
)

const (
	Collection = "website"
	DocumentID = "gymProData"
)

// Sections of the public document, also used as log/metric labels.
const (
	SectionAll          = "all"
	SectionPrograms     = "programs"
	SectionGallery      = "gallery"
	SectionTestimonials = "testimonials"
	SectionWhatsApp     = "whatsapp"
	SectionSocial       = "social"
)

const timestampLayout = "2006-01-02T15:04:05.000Z"

// Notifier receives an event after every successful sync.
type Notifier interface {
	BroadcastEvent(eventType string, data interface{})
}

type Aggregator struct {
	store    store.Store
	svc      *services.Services
	now      func() time.Time
	notifier Notifier
}

type Option func(*Aggregator)

func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) { a.now = now }
}

func WithNotifier(n Notifier) Option {
	return func(a *Aggregator) { a.notifier = n }
}

func NewAggregator(st store.Store, svc *services.Services, opts ...Option) *Aggregator {
	a := &Aggregator{store: st, svc: svc, now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// FetchCurrent returns the public document, or store.ErrNotFound if it was never written.
func (a *Aggregator) FetchCurrent(ctx context.Context) (store.Record, error) {
	rec, err := a.store.FetchOne(ctx, Collection, DocumentID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			logging.Error().Err(err).Msg("Error fetching website config")
		}
		return nil, err
	}
	delete(rec, "id")
	return rec, nil
}

// SyncAll reads every source concurrently and rewrites all sections of the public document.
func (a *Aggregator) SyncAll(ctx context.Context) (store.Record, error) {
	started := time.Now()
	logging.Info().Str("project", a.store.ProjectID()).Msg("Starting full website config sync")

	var (
		programs, gallery, testimonials []store.Record
		whatsapp, social                store.Record
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		programs, err = a.svc.Programs.FetchAll(gctx)
		return err
	})
	g.Go(func() (err error) {
		gallery, err = a.svc.Gallery.FetchAll(gctx)
		return err
	})
	g.Go(func() (err error) {
		testimonials, err = a.svc.Testimonials.FetchAll(gctx)
		return err
	})
	g.Go(func() (err error) {
		whatsapp, err = optional(a.svc.Settings.FetchWhatsApp(gctx))
		return err
	})
	g.Go(func() (err error) {
		social, err = optional(a.svc.Settings.FetchSocial(gctx))
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, a.failed(SectionAll, started, err)
	}

	current, err := optional(a.FetchCurrent(ctx))
	if err != nil {
		return nil, a.failed(SectionAll, started, err)
	}

	doc := current.Clone()
	if doc == nil {
		doc = store.Record{}
	}
	doc["programs"] = ProjectAll(programs, ProgramRules)
	doc["gallery"] = ProjectAll(gallery, GalleryRules)
	doc["testimonials"] = ProjectAll(testimonials, TestimonialRules)

	contact := copyObject(current, "contact")
	for k, v := range Project(whatsapp, ContactRules) {
		contact[k] = v
	}
	doc["contact"] = contact

	footer := copyObject(current, "footer")
	footer["socialMedia"] = Project(social, SocialRules)
	doc["footer"] = footer

	updatedAt := a.timestamp()
	doc["updatedAt"] = updatedAt

	if err := a.store.Merge(ctx, Collection, DocumentID, doc); err != nil {
		return nil, a.failed(SectionAll, started, err)
	}
	a.succeeded(SectionAll, started, updatedAt)
	return doc, nil
}

func (a *Aggregator) SyncPrograms(ctx context.Context) error {
	return a.syncSection(ctx, SectionPrograms, func(ctx context.Context) (store.Record, error) {
		programs, err := a.svc.Programs.FetchAll(ctx)
		if err != nil {
			return nil, err
		}
		return store.Record{"programs": ProjectAll(programs, ProgramRules)}, nil
	})
}

func (a *Aggregator) SyncGallery(ctx context.Context) error {
	return a.syncSection(ctx, SectionGallery, func(ctx context.Context) (store.Record, error) {
		gallery, err := a.svc.Gallery.FetchAll(ctx)
		if err != nil {
			return nil, err
		}
		return store.Record{"gallery": ProjectAll(gallery, GalleryRules)}, nil
	})
}

func (a *Aggregator) SyncTestimonials(ctx context.Context) error {
	return a.syncSection(ctx, SectionTestimonials, func(ctx context.Context) (store.Record, error) {
		testimonials, err := a.svc.Testimonials.FetchAll(ctx)
		if err != nil {
			return nil, err
		}
		return store.Record{"testimonials": ProjectAll(testimonials, TestimonialRules)}, nil
	})
}

func (a *Aggregator) SyncWhatsApp(ctx context.Context) error {
	return a.syncSection(ctx, SectionWhatsApp, func(ctx context.Context) (store.Record, error) {
		settings, err := optional(a.svc.Settings.FetchWhatsApp(ctx))
		if err != nil {
			return nil, err
		}
		return store.Record{"contact": Project(settings, ContactRules)}, nil
	})
}

func (a *Aggregator) SyncSocialMedia(ctx context.Context) error {
	return a.syncSection(ctx, SectionSocial, func(ctx context.Context) (store.Record, error) {
		settings, err := optional(a.svc.Settings.FetchSocial(ctx))
		if err != nil {
			return nil, err
		}
		return store.Record{"footer": map[string]any{"socialMedia": Project(settings, SocialRules)}}, nil
	})
}

// syncSection writes one freshly built section plus updatedAt.
func (a *Aggregator) syncSection(ctx context.Context, section string, build func(context.Context) (store.Record, error)) error {
	started := time.Now()

	patch, err := build(ctx)
	if err != nil {
		return a.failed(section, started, err)
	}
	updatedAt := a.timestamp()
	patch["updatedAt"] = updatedAt

	if err := a.store.Merge(ctx, Collection, DocumentID, patch); err != nil {
		return a.failed(section, started, err)
	}
	a.succeeded(section, started, updatedAt)
	return nil
}

func (a *Aggregator) timestamp() string {
	return a.now().UTC().Format(timestampLayout)
}

func (a *Aggregator) failed(section string, started time.Time, err error) error {
	metrics.RecordSync(section, started, err)
	logging.Error().Err(err).Str("section", section).Str("project", a.store.ProjectID()).
		Msg("Error syncing website config")
	return err
}

func (a *Aggregator) succeeded(section string, started time.Time, updatedAt string) {
	metrics.RecordSync(section, started, nil)
	logging.Info().Str("section", section).Str("project", a.store.ProjectID()).
		Dur("took", time.Since(started)).Msg("Synced website config")
	if a.notifier != nil {
		a.notifier.BroadcastEvent("config_synced", models.SyncEvent{Section: section, UpdatedAt: updatedAt})
	}
}

// optional maps an absent singleton to an empty record.
func optional(rec store.Record, err error) (store.Record, error) {
	if errors.Is(err, store.ErrNotFound) {
		return store.Record{}, nil
	}
	return rec, err
}

// copyObject returns a shallow copy of rec[key] when it is an object, else an empty map.
func copyObject(rec store.Record, key string) map[string]any {
	out := map[string]any{}
	switch m := rec[key].(type) {
	case map[string]any:
		for k, v := range m {
			out[k] = v
		}
	case store.Record:
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}
