package event

import (
	"github.com/0xsj/overwatch-pkg/types"
)

// ServiceRegistered is emitted when a service joins the directory.
type ServiceRegistered struct {
	BaseEvent
	ServiceID types.ID
	Name      string
	DID       string
	Endpoint  string
	Version   string
}

// NewServiceRegistered creates a new ServiceRegistered event.
func NewServiceRegistered(serviceID types.ID, name, did, endpoint, version string) ServiceRegistered {
	return ServiceRegistered{
		BaseEvent: NewBaseEvent(EventTypeServiceRegistered, serviceID, AggregateTypeService),
		ServiceID: serviceID,
		Name:      name,
		DID:       did,
		Endpoint:  endpoint,
		Version:   version,
	}
}

// ServiceUpdated is emitted when a service advertises a new endpoint or version.
type ServiceUpdated struct {
	BaseEvent
	ServiceID types.ID
	Endpoint  string
	Version   string
}

// NewServiceUpdated creates a new ServiceUpdated event.
func NewServiceUpdated(serviceID types.ID, endpoint, version string) ServiceUpdated {
	return ServiceUpdated{
		BaseEvent: NewBaseEvent(EventTypeServiceUpdated, serviceID, AggregateTypeService),
		ServiceID: serviceID,
		Endpoint:  endpoint,
		Version:   version,
	}
}

// ServiceDraining is emitted when a service stops taking new work.
type ServiceDraining struct {
	BaseEvent
	ServiceID types.ID
}

// NewServiceDraining creates a new ServiceDraining event.
func NewServiceDraining(serviceID types.ID) ServiceDraining {
	return ServiceDraining{
		BaseEvent: NewBaseEvent(EventTypeServiceDraining, serviceID, AggregateTypeService),
		ServiceID: serviceID,
	}
}

// ServiceDeregistered is emitted when a service leaves the directory.
type ServiceDeregistered struct {
	BaseEvent
	ServiceID types.ID
	Reason    string
}

// NewServiceDeregistered creates a new ServiceDeregistered event.
func NewServiceDeregistered(serviceID types.ID, reason string) ServiceDeregistered {
	return ServiceDeregistered{
		BaseEvent: NewBaseEvent(EventTypeServiceDeregistered, serviceID, AggregateTypeService),
		ServiceID: serviceID,
		Reason:    reason,
	}
}
