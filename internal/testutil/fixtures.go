// Package testutil provides testing utilities for the directory service.
package testutil

import (
	"fmt"
	"sync/atomic"

	"github.com/0xsj/overwatch-pkg/security"
	"github.com/0xsj/overwatch-pkg/types"

	"github.com/0xsj/overwatch-directory/internal/domain/model"
)

// Fixtures provides builders for domain models in tests.
var Fixtures = &fixtures{}

type fixtures struct {
	counter atomic.Int64
}

// DID generates a valid DID string from a new keypair.
func (f *fixtures) DID() string {
	kp, err := security.GenerateEd25519()
	if err != nil {
		panic("fixtures: failed to generate keypair: " + err.Error())
	}
	did, err := security.DIDFromKeyPair(kp)
	if err != nil {
		panic("fixtures: failed to create DID: " + err.Error())
	}
	return did.String()
}

// ServiceName generates a unique service name.
func (f *fixtures) ServiceName() string {
	return fmt.Sprintf("service-%d", f.counter.Add(1))
}

// Service creates an active Service with default values.
func (f *fixtures) Service() *model.Service {
	return f.ServiceBuilder().Build()
}

// ServiceBuilder returns a builder for customizing Service creation.
func (f *fixtures) ServiceBuilder() *ServiceBuilder {
	return &ServiceBuilder{
		id:       types.NewID(),
		name:     f.ServiceName(),
		did:      f.DID(),
		endpoint: "10.0.0.1:50051",
		version:  "1.0.0",
		status:   model.ServiceStatusActive,
	}
}

type ServiceBuilder struct {
	id       types.ID
	name     string
	did      string
	endpoint string
	version  string
	status   model.ServiceStatus
}

func (b *ServiceBuilder) WithID(id types.ID) *ServiceBuilder {
	b.id = id
	return b
}

func (b *ServiceBuilder) WithName(name string) *ServiceBuilder {
	b.name = name
	return b
}

func (b *ServiceBuilder) WithEndpoint(endpoint string) *ServiceBuilder {
	b.endpoint = endpoint
	return b
}

func (b *ServiceBuilder) WithVersion(version string) *ServiceBuilder {
	b.version = version
	return b
}

func (b *ServiceBuilder) WithStatus(status model.ServiceStatus) *ServiceBuilder {
	b.status = status
	return b
}

func (b *ServiceBuilder) Build() *model.Service {
	svc, err := model.NewService(b.id, b.name, b.did, b.endpoint, b.version)
	if err != nil {
		panic("fixtures: failed to create service: " + err.Error())
	}

	switch b.status {
	case model.ServiceStatusDraining:
		if err := svc.Drain(); err != nil {
			panic("fixtures: failed to drain service: " + err.Error())
		}
	case model.ServiceStatusDeregistered:
		svc.Deregister()
	}

	return svc
}
