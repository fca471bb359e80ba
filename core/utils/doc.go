// Package utils provides common utility functions for the vehicle-sync application.
// It includes helpers for converting loosely typed JSON values coming from the
// source and target APIs into strings, booleans and decimals.
package utils
