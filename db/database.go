package db

import "gorm.io/gorm"

// Database hands out the shared gorm handle. Repositories open their
// own transactions per call through it.
type Database interface {
	GetDB() *gorm.DB
}

type GormDatabase struct {
	DB *gorm.DB
}

func (g *GormDatabase) GetDB() *gorm.DB { return g.DB }
