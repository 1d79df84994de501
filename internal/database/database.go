package database

import (
	"fmt"
	"log"

	"reading-club/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect establishes a connection to the PostgreSQL database.
// TranslateError maps driver duplicate-key errors to gorm.ErrDuplicatedKey,
// which the week lifecycle relies on to settle creation races.
func Connect(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Error),
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Println("Database connection established successfully")
	return db, nil
}

// AutoMigrate runs automatic migrations for all models
func AutoMigrate(db *gorm.DB) error {
	// Migrate identity models first
	identityModels := []interface{}{
		&models.User{},
		&models.Group{},
		&models.GroupMember{},
		&models.Invite{},
	}

	for _, model := range identityModels {
		if err := db.AutoMigrate(model); err != nil {
			log.Printf("Warning: migration issue for %T: %v", model, err)
		}
	}

	// Migrate voting models
	votingModels := []interface{}{
		&models.Week{},
		&models.Proposal{},
		&models.Vote{},
		&models.ReadingItem{},
		&models.ReadMark{},
	}

	for _, model := range votingModels {
		if err := db.AutoMigrate(model); err != nil {
			log.Printf("Warning: migration issue for %T: %v", model, err)
		}
	}

	// Migrate discussion models
	discussionModels := []interface{}{
		&models.Comment{},
		&models.ProposalComment{},
		&models.ProposalCommentRead{},
		&models.Annotation{},
		&models.AnnotationReply{},
		&models.Notification{},
	}

	for _, model := range discussionModels {
		if err := db.AutoMigrate(model); err != nil {
			log.Printf("Warning: migration issue for %T: %v", model, err)
		}
	}

	log.Println("Database migrations completed successfully")
	return nil
}
