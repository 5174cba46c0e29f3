package models

type Reference struct {
	ID   int64
	Type string
}
