package models

import "errors"

var (
	ErrUnknownDataset = errors.New("unknown dataset")
	ErrUnknownColumn  = errors.New("unknown column")
	ErrNotNumeric     = errors.New("column is not numeric")
)
