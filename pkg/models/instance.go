package models

import "time"

// ServerInstance is a SeaDB managed-database server as returned by the
// management API.
type ServerInstance struct {
	ID         string             `json:"id,omitempty"`
	Name       string             `json:"name,omitempty"`
	Type       string             `json:"type,omitempty"`
	Location   string             `json:"location,omitempty"`
	SKU        *SKU               `json:"sku,omitempty"`
	Tags       map[string]*string `json:"tags,omitempty"`
	Properties *ServerProperties  `json:"properties,omitempty"`
}

// SKU describes the compute tier of a server instance.
type SKU struct {
	Name     string `json:"name,omitempty"`
	Tier     string `json:"tier,omitempty"`
	Capacity int32  `json:"capacity,omitempty"`
}

// ServerProperties carries the mutable state of a server instance.
type ServerProperties struct {
	ProvisioningState        string     `json:"provisioningState,omitempty"`
	UserVisibleState         string     `json:"userVisibleState,omitempty"`
	Version                  string     `json:"version,omitempty"`
	StorageMB                int64      `json:"storageMB,omitempty"`
	FullyQualifiedDomainName string     `json:"fullyQualifiedDomainName,omitempty"`
	AdministratorLogin       string     `json:"administratorLogin,omitempty"`
	SSLEnforcement           string     `json:"sslEnforcement,omitempty"`
	EarliestRestoreDate      *time.Time `json:"earliestRestoreDate,omitempty"`
}

// ServerInstanceList is one page of a paged list response.
type ServerInstanceList struct {
	Value    []*ServerInstance `json:"value,omitempty"`
	NextLink string            `json:"nextLink,omitempty"`
}

// ServerForCreate is the payload for creating a server instance.
type ServerForCreate struct {
	Location   string                     `json:"location"`
	SKU        *SKU                       `json:"sku,omitempty"`
	Tags       map[string]*string         `json:"tags,omitempty"`
	Properties *ServerPropertiesForCreate `json:"properties,omitempty"`
}

// ServerPropertiesForCreate holds the create-only settings.
type ServerPropertiesForCreate struct {
	AdministratorLogin         string `json:"administratorLogin,omitempty"`
	AdministratorLoginPassword string `json:"administratorLoginPassword,omitempty"`
	Version                    string `json:"version,omitempty"`
	StorageMB                  int64  `json:"storageMB,omitempty"`
	SSLEnforcement             string `json:"sslEnforcement,omitempty"`
	CreateMode                 string `json:"createMode,omitempty"`
}

// ServerUpdateParameters is the PATCH payload for updating a server.
// Nil fields are left unchanged by the service.
type ServerUpdateParameters struct {
	SKU        *SKU                       `json:"sku,omitempty"`
	Tags       map[string]*string         `json:"tags,omitempty"`
	Properties *ServerPropertiesForUpdate `json:"properties,omitempty"`
}

// ServerPropertiesForUpdate holds the updatable subset of server settings.
type ServerPropertiesForUpdate struct {
	AdministratorLoginPassword string `json:"administratorLoginPassword,omitempty"`
	Version                    string `json:"version,omitempty"`
	StorageMB                  int64  `json:"storageMB,omitempty"`
	SSLEnforcement             string `json:"sslEnforcement,omitempty"`
}
