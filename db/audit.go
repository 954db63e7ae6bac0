// Package db - persistence layer
package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/oklog/ulid/v2"
	"github.com/polarishealth/telemetry/models"
	"gorm.io/datatypes"
)

// defineNewTelemetryEvent record a new telemetry audit event
func (d *databaseImpl) defineNewTelemetryEvent(
	eventType models.TelemetryEventTypeENUMType, metadata interface{},
) (models.TelemetryEventAudit, error) {

	newEntry := TelemetryEventAuditDBEntry{
		TelemetryEventAudit: models.TelemetryEventAudit{
			ID: ulid.Make().String(), EventType: eventType,
		},
	}

	if metadata != nil {
		if err := d.validator.Struct(metadata); err != nil {
			return models.TelemetryEventAudit{}, fmt.Errorf(
				"new telemetry event '%s' metadata entry is not valid [%w]", eventType, err,
			)
		}

		metadataStr, _ := json.Marshal(&metadata)
		newEntry.Metadata = datatypes.JSON(metadataStr)
	}

	if err := d.validator.Struct(&newEntry); err != nil {
		return models.TelemetryEventAudit{}, fmt.Errorf(
			"new telemetry event '%s' entry is not valid [%w]", eventType, err,
		)
	}

	if tmp := d.db.Create(&newEntry); tmp.Error != nil {
		return models.TelemetryEventAudit{}, fmt.Errorf(
			"new telemetry event '%s' insert failed [%w]", eventType, tmp.Error,
		)
	}

	return newEntry.TelemetryEventAudit, nil
}

/*
ListTelemetryEvents list captured telemetry audit events

	@param ctx context.Context - execution context
	@param filters TelemetryEventQueryFilter - entry listing filter
	@return list of telemetry events
*/
func (d *databaseImpl) ListTelemetryEvents(
	_ context.Context, filters TelemetryEventQueryFilter,
) ([]models.TelemetryEventAudit, error) {
	query := d.db.Model(&TelemetryEventAuditDBEntry{})

	if len(filters.EventTypes) > 0 {
		query = query.Where("type in ?", filters.EventTypes)
	}

	if filters.EventsAfter != nil {
		query = query.Where("created_at >= ?", *filters.EventsAfter)
	}
	if filters.EventsBefore != nil {
		query = query.Where("created_at <= ?", *filters.EventsBefore)
	}

	if filters.Limit != nil {
		query = query.Limit(*filters.Limit)
	}
	if filters.Offset != nil {
		query = query.Offset(*filters.Offset)
	}

	query = query.Order("created_at")

	var entries []TelemetryEventAuditDBEntry
	if tmp := query.Find(&entries); tmp.Error != nil {
		return nil, fmt.Errorf("failed to list captured telemetry events [%w]", tmp.Error)
	}

	result := []models.TelemetryEventAudit{}
	for _, entry := range entries {
		result = append(result, entry.TelemetryEventAudit)
	}

	return result, nil
}
