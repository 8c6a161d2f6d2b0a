// Package services binds the document store to the admin panel's collections.
package services

import (
	"context"

	"github.com/htech-wordpress/vibefit-studio-admin/internal/store"
)

const (
	CollectionInquiries    = "inquiries"
	CollectionPrograms     = "programs"
	CollectionGallery      = "gallery"
	CollectionTestimonials = "testimonials"
	CollectionSettings     = "settings"

	SettingsWhatsApp = "whatsapp"
	SettingsSocial   = "social"
)

// Inquiry statuses a staff member can move an inquiry through.
const (
	StatusNew       = "new"
	StatusContacted = "contacted"
	StatusConverted = "converted"
	StatusClosed    = "closed"
)

// InquiryStatuses lists every valid inquiry status.
var InquiryStatuses = []string{StatusNew, StatusContacted, StatusConverted, StatusClosed}

// Services is the set of per-entity facades, built once at startup.
type Services struct {
	Customers    *CustomerService
	Programs     *CollectionService
	Gallery      *CollectionService
	Testimonials *CollectionService
	Settings     *SettingsService
}

func New(s store.Store) *Services {
	return &Services{
		Customers:    &CustomerService{store: s},
		Programs:     &CollectionService{store: s, collection: CollectionPrograms},
		Gallery:      &CollectionService{store: s, collection: CollectionGallery},
		Testimonials: &CollectionService{store: s, collection: CollectionTestimonials},
		Settings:     &SettingsService{store: s},
	}
}

// CollectionService is full CRUD over one collection.
type CollectionService struct {
	store      store.Store
	collection string
}

func (c *CollectionService) Collection() string { return c.collection }

func (c *CollectionService) FetchAll(ctx context.Context) ([]store.Record, error) {
	return c.store.FetchAll(ctx, c.collection)
}

func (c *CollectionService) FetchOne(ctx context.Context, id string) (store.Record, error) {
	return c.store.FetchOne(ctx, c.collection, id)
}

func (c *CollectionService) Add(ctx context.Context, data store.Record) (string, error) {
	return c.store.Add(ctx, c.collection, data)
}

func (c *CollectionService) Update(ctx context.Context, id string, data store.Record) error {
	return c.store.Update(ctx, c.collection, id, data)
}

func (c *CollectionService) Delete(ctx context.Context, id string) error {
	return c.store.Delete(ctx, c.collection, id)
}

// CustomerService covers inquiries. They are created by the public site, so there is no Add.
type CustomerService struct {
	store store.Store
}

func (c *CustomerService) FetchAll(ctx context.Context) ([]store.Record, error) {
	return c.store.FetchAll(ctx, CollectionInquiries)
}

func (c *CustomerService) FetchOne(ctx context.Context, id string) (store.Record, error) {
	return c.store.FetchOne(ctx, CollectionInquiries, id)
}

func (c *CustomerService) Update(ctx context.Context, id string, data store.Record) error {
	return c.store.Update(ctx, CollectionInquiries, id, data)
}

func (c *CustomerService) Delete(ctx context.Context, id string) error {
	return c.store.Delete(ctx, CollectionInquiries, id)
}

// SettingsService reads and writes the whatsapp and social singletons.
type SettingsService struct {
	store store.Store
}

func (s *SettingsService) FetchWhatsApp(ctx context.Context) (store.Record, error) {
	return s.store.FetchOne(ctx, CollectionSettings, SettingsWhatsApp)
}

func (s *SettingsService) UpdateWhatsApp(ctx context.Context, data store.Record) error {
	return s.store.Merge(ctx, CollectionSettings, SettingsWhatsApp, data)
}

func (s *SettingsService) FetchSocial(ctx context.Context) (store.Record, error) {
	return s.store.FetchOne(ctx, CollectionSettings, SettingsSocial)
}

func (s *SettingsService) UpdateSocial(ctx context.Context, data store.Record) error {
	return s.store.Merge(ctx, CollectionSettings, SettingsSocial, data)
}
