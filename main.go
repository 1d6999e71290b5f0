package main

import (
	"log"
	"sensegrid-server/confs"
	"sensegrid-server/db"
	"sensegrid-server/server"
)

func main() {
	// load config
	err := confs.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// connect to database Postgres
	database, err := db.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}

	// run server (HTTP API + MQTT subscriber)
	srv := server.NewServer(database)
	srv.Start()
}
