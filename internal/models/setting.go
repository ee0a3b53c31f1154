package models

// InitSettingKey is the reserved settings key marking whether the default
// site settings have been seeded ("y" or "n").
const InitSettingKey = "init"

// SettingSetRequest represents a settings upsert request
type SettingSetRequest struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}
