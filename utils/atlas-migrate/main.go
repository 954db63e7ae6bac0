// Package main - Atlas GORM migration support binary
package main

import (
	"fmt"

	"ariga.io/atlas-provider-gorm/gormschema"
	"github.com/apex/log"
	"github.com/polarishealth/telemetry/db"
)

func main() {
	stmts, err := gormschema.New("postgres").Load(
		&db.TelemetryEventAuditDBEntry{},
		&db.MobileDBEntry{},
		&db.DesktopDBEntry{},
		&db.BloodGlucoseMeterDBEntry{},
	)
	if err != nil {
		log.WithError(err).Fatal("Failed to load GORM models")
	}
	fmt.Printf("%s\n", stmts)
}
