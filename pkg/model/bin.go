// Package model holds the shared data types of the service.
package model

import (
	"time"

	"safaigo/pkg/geo"
)

// BinKind labels what a collection point accepts.
type BinKind string

const (
	BinKindWet       BinKind = "wet"
	BinKindDry       BinKind = "dry"
	BinKindEWaste    BinKind = "e-waste"
	BinKindComposter BinKind = "composter"
)

// Bin is a registered waste collection point.
type Bin struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Ward      string    `json:"ward"`
	Kind      BinKind   `json:"kind"`
	Lat       float64   `json:"lat"`
	Lon       float64   `json:"lon"`
	CreatedAt time.Time `json:"created_at"`
}

// Location returns the bin's coordinates as a point.
func (b *Bin) Location() geo.Point {
	return geo.Point{Lat: b.Lat, Lon: b.Lon}
}
