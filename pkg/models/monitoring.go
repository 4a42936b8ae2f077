package models

// MonitoringSettings is the monitoring subresource of a server instance.
type MonitoringSettings struct {
	ID         string                        `json:"id,omitempty"`
	Name       string                        `json:"name,omitempty"`
	Type       string                        `json:"type,omitempty"`
	Properties *MonitoringSettingsProperties `json:"properties,omitempty"`
}

// MonitoringSettingsProperties configures metric collection for a server.
type MonitoringSettingsProperties struct {
	ProvisioningState     string `json:"provisioningState,omitempty"`
	Enabled               bool   `json:"enabled"`
	RetentionDays         int32  `json:"retentionDays,omitempty"`
	MetricsIntervalSecond int32  `json:"metricsIntervalSeconds,omitempty"`
	WorkspaceID           string `json:"workspaceId,omitempty"`
}
