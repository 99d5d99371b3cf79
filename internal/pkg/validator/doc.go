// Package validator wraps struct validation behind a small interface so
// usecases stay independent of the underlying validation library.
package validator
