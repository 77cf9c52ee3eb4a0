package model

// DisplayColor is the color hint the UI uses when rendering an
// authentication outcome message.
type DisplayColor string

const (
	DisplayColorSuccess DisplayColor = "green"
	DisplayColorFailure DisplayColor = "red"
)
