package db

import (
	"context"
	"fmt"
)

/*
ResetTelemetryTables clear the installation tables

Meant for test environments only. Only the installation tables are cleared;
meter pairings and audit events are left in place.

	@param ctx context.Context - execution context
*/
func (d *databaseImpl) ResetTelemetryTables(_ context.Context) error {
	if tmp := d.db.Where("1 = 1").Delete(&MobileDBEntry{}); tmp.Error != nil {
		return fmt.Errorf("failed to clear mobile installation table [%w]", tmp.Error)
	}
	if tmp := d.db.Where("1 = 1").Delete(&DesktopDBEntry{}); tmp.Error != nil {
		return fmt.Errorf("failed to clear desktop installation table [%w]", tmp.Error)
	}
	return nil
}
