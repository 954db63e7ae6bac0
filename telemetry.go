// Package telemetry - registry of application installations and meter pairings
package telemetry

import (
	"fmt"

	"github.com/polarishealth/telemetry/db"
	"github.com/polarishealth/telemetry/registry"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Registries the registry controllers backed by one persistence client
type Registries struct {
	// Installations installation registry
	Installations registry.InstallationRegistry
	// Meters meter pairing registry
	Meters registry.MeterRegistry
	// Persistence the shared persistence client
	Persistence db.Client
}

/*
New initialize the telemetry registries.

Each instance is backed by a SQL database; two instances using the same database
are essentially copies of each other.

	@param dbDialector gorm.Dialector - GORM dialector
	@param dbLogLevel logger.LogLevel - SQL log level
	@returns registry controllers
*/
func New(dbDialector gorm.Dialector, dbLogLevel logger.LogLevel) (Registries, error) {
	// Prepare persistence
	persistence, err := db.NewConnection(dbDialector, dbLogLevel)
	if err != nil {
		return Registries{}, fmt.Errorf("failed to initialized persistence client [%w]", err)
	}

	installations, err := registry.NewInstallationRegistry(persistence)
	if err != nil {
		return Registries{}, fmt.Errorf("failed to initialized installation registry [%w]", err)
	}

	meters, err := registry.NewMeterRegistry(persistence)
	if err != nil {
		return Registries{}, fmt.Errorf("failed to initialized meter registry [%w]", err)
	}

	return Registries{Installations: installations, Meters: meters, Persistence: persistence}, nil
}
