package organization

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("organization not found")

// Organization is the tenant boundary. The subdomain slug is globally
// unique and immutable once assigned; there is deliberately no slug setter,
// and re-pointing a slug to a different external identity-provider org is an
// explicit repository operation, never an implicit create.
type Organization struct {
	id         uuid.UUID
	externalID string
	name       string
	slug       string
	isActive   bool
	createdAt  time.Time
	updatedAt  time.Time
}

type Option func(*Organization)

func WithID(id uuid.UUID) Option {
	return func(o *Organization) {
		o.id = id
	}
}

func WithExternalID(externalID string) Option {
	return func(o *Organization) {
		o.externalID = externalID
	}
}

func WithIsActive(isActive bool) Option {
	return func(o *Organization) {
		o.isActive = isActive
	}
}

func WithCreatedAt(createdAt time.Time) Option {
	return func(o *Organization) {
		o.createdAt = createdAt
	}
}

func WithUpdatedAt(updatedAt time.Time) Option {
	return func(o *Organization) {
		o.updatedAt = updatedAt
	}
}

func New(name, slug string, opts ...Option) *Organization {
	o := &Organization{
		id:        uuid.New(),
		name:      name,
		slug:      slug,
		isActive:  true,
		createdAt: time.Now(),
		updatedAt: time.Now(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Organization) ID() uuid.UUID {
	return o.id
}

func (o *Organization) ExternalID() string {
	return o.externalID
}

func (o *Organization) Name() string {
	return o.name
}

func (o *Organization) Slug() string {
	return o.slug
}

func (o *Organization) IsActive() bool {
	return o.isActive
}

func (o *Organization) CreatedAt() time.Time {
	return o.createdAt
}

func (o *Organization) UpdatedAt() time.Time {
	return o.updatedAt
}

func (o *Organization) SetName(name string) {
	o.name = name
	o.updatedAt = time.Now()
}

func (o *Organization) Deactivate() {
	o.isActive = false
	o.updatedAt = time.Now()
}
