package database

import "porchlight/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.Comment{},
		&models.Reaction{},
		&models.Presence{},
	}
}
