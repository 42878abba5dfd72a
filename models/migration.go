package models

import (
	"log"

	"bitbucket.org/tkmfield/precom_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&WeldingRecord{}, &TestPackage{}, &LineList{}, &Faclist{},
		&System{}, &Subsystem{},
		&JointSummary{}, &SystemWeldingSummary{}, &SubsystemWeldingSummary{},
		&BlockSystemSummary{}, &BlockSubsystemSummary{},
		&NDEPWHTStatus{}, &ISODrawingList{},
		&TestPackagePreparationAlert{},
		&SyncLog{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
