package students

import (
	"errors"
	"strings"
	"time"
)

const (
	// dd-MM-yyyy, used on every console and file path
	BirthDateLayout = "02-01-2006"
	// yyyy-MM-dd, written by the legacy relational XML export
	IsoBirthDateLayout = "2006-01-02"

	NoGroup = "Sin grupo"
)

var (
	ErrInvalidGender	= errors.New("gender must be M or F")
	ErrInvalidBirthDate	= errors.New("birth date must have the format dd-MM-yyyy")
)

type Gender string

const (
	Male	Gender = "M"
	Female	Gender = "F"
)

// parse the given gender code, accepting only M or F (case-insensitive)
func ParseGender(s string) (Gender, error) {
	switch Gender(NormalizeText(s)) {
	case Male:
		return Male, nil
	case Female:
		return Female, nil
	}
	return "", ErrInvalidGender
}

// parse a dd-MM-yyyy birth date. Parsing is strict: 31-02-2000 is rejected
func ParseBirthDate(s string) (time.Time, error) {
	date, err := time.Parse(BirthDateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, ErrInvalidBirthDate
	}
	return date, nil
}

func FormatBirthDate(date time.Time) string {
	return date.Format(BirthDateLayout)
}
