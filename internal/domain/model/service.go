package model

import (
	"net"
	"strconv"
	"strings"

	"github.com/0xsj/overwatch-pkg/security"
	"github.com/0xsj/overwatch-pkg/types"

	domainerror "github.com/0xsj/overwatch-directory/internal/domain/error"
)

// ServiceStatus represents the lifecycle state of a directory entry.
type ServiceStatus string

const (
	ServiceStatusActive       ServiceStatus = "active"
	ServiceStatusDraining     ServiceStatus = "draining"
	ServiceStatusDeregistered ServiceStatus = "deregistered"
)

func (s ServiceStatus) String() string {
	return string(s)
}

func (s ServiceStatus) IsValid() bool {
	switch s {
	case ServiceStatusActive, ServiceStatusDraining, ServiceStatusDeregistered:
		return true
	default:
		return false
	}
}

// ParseServiceStatus parses a status string.
func ParseServiceStatus(s string) (ServiceStatus, error) {
	status := ServiceStatus(strings.ToLower(strings.TrimSpace(s)))
	if !status.IsValid() {
		return "", domainerror.ErrServiceStatusInvalid
	}
	return status, nil
}

// Service is a registered overwatch service as seen by the directory.
type Service struct {
	id             types.ID
	name           string
	did            string
	endpoint       string
	version        string
	status         ServiceStatus
	registeredAt   types.Timestamp
	updatedAt      types.Timestamp
	deregisteredAt types.Optional[types.Timestamp]
}

// NewService creates an active directory entry.
func NewService(id types.ID, name, did, endpoint, version string) (*Service, error) {
	if id.IsEmpty() {
		return nil, domainerror.ErrServiceIDRequired
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domainerror.ErrServiceNameRequired
	}

	if err := validateEndpoint(endpoint); err != nil {
		return nil, err
	}

	parsed, err := security.ParseDID(did)
	if err != nil {
		return nil, domainerror.ErrServiceDIDInvalid
	}

	now := types.Now()

	return &Service{
		id:             id,
		name:           name,
		did:            parsed.String(),
		endpoint:       endpoint,
		version:        strings.TrimSpace(version),
		status:         ServiceStatusActive,
		registeredAt:   now,
		updatedAt:      now,
		deregisteredAt: types.None[types.Timestamp](),
	}, nil
}

// ReconstructService creates a Service from persisted data.
func ReconstructService(
	id types.ID,
	name string,
	did string,
	endpoint string,
	version string,
	status ServiceStatus,
	registeredAt types.Timestamp,
	updatedAt types.Timestamp,
	deregisteredAt types.Optional[types.Timestamp],
) *Service {
	return &Service{
		id:             id,
		name:           name,
		did:            did,
		endpoint:       endpoint,
		version:        version,
		status:         status,
		registeredAt:   registeredAt,
		updatedAt:      updatedAt,
		deregisteredAt: deregisteredAt,
	}
}

// Getters

func (s *Service) ID() types.ID                                    { return s.id }
func (s *Service) Name() string                                    { return s.name }
func (s *Service) DID() string                                     { return s.did }
func (s *Service) Endpoint() string                                { return s.endpoint }
func (s *Service) Version() string                                 { return s.version }
func (s *Service) Status() ServiceStatus                           { return s.status }
func (s *Service) RegisteredAt() types.Timestamp                   { return s.registeredAt }
func (s *Service) UpdatedAt() types.Timestamp                      { return s.updatedAt }
func (s *Service) DeregisteredAt() types.Optional[types.Timestamp] { return s.deregisteredAt }

// IsActive reports whether the service accepts traffic.
func (s *Service) IsActive() bool {
	return s.status == ServiceStatusActive
}

// IsDeregistered reports whether the service has left the directory.
func (s *Service) IsDeregistered() bool {
	return s.status == ServiceStatusDeregistered
}

// Update changes the advertised endpoint and version.
// A deregistered service must be registered again instead.
func (s *Service) Update(endpoint, version string) error {
	if s.IsDeregistered() {
		return domainerror.ErrServiceDeregistered
	}
	if err := validateEndpoint(endpoint); err != nil {
		return err
	}

	s.endpoint = endpoint
	s.version = strings.TrimSpace(version)
	s.updatedAt = types.Now()
	return nil
}

// Drain marks the service as finishing in-flight work.
func (s *Service) Drain() error {
	if s.IsDeregistered() {
		return domainerror.ErrServiceDeregistered
	}

	s.status = ServiceStatusDraining
	s.updatedAt = types.Now()
	return nil
}

// Deregister removes the service from rotation. Deregistering twice is a no-op.
func (s *Service) Deregister() {
	if s.IsDeregistered() {
		return
	}

	now := types.Now()
	s.status = ServiceStatusDeregistered
	s.updatedAt = now
	s.deregisteredAt = types.Some(now)
}

func validateEndpoint(endpoint string) error {
	host, port, err := net.SplitHostPort(endpoint)
	if err != nil || host == "" {
		return domainerror.ErrServiceEndpointInvalid
	}

	n, err := strconv.Atoi(port)
	if err != nil || n <= 0 || n > 65535 {
		return domainerror.ErrServiceEndpointInvalid
	}
	return nil
}
