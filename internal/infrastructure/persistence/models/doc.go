// Package models contains the GORM models of the fake inventory API.
// They stay separate from the domain types, which carry only JSON tags;
// every model converts itself with ToDomain.
package models
