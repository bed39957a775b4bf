package database

import (
	"fmt"
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"github.com/Camier/searxng-convivial-instance/src/core/config"
)

// Connect opens the Postgres connection holding the durable convivial
// tables (users, discoveries, time_capsules, collisions, search_sessions).
// The handle is owned by the caller and passed to the module stores.
func Connect() (*gorm.DB, error) {
	host := config.Config("DB_HOST")
	port := config.Config("DB_PORT")
	user := config.Config("DB_USER")
	password := config.Config("DB_PASSWORD")
	dbname := config.Config("DB_NAME")

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable", host, port, user, password, dbname)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		PrepareStmt: false,
		NamingStrategy: schema.NamingStrategy{
			SingularTable: false,
		},
	})
	if err != nil {
		return nil, err
	}
	log.Println("Database successfully connected!")
	return db, nil
}
