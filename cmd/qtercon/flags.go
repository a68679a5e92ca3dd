package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// verbosityCounter is a flag.Value implementation that accumulates repeated
// -v entries into a verbosity level.
type verbosityCounter struct {
	count int
}

// Set adds the numeric value to the count; an empty value counts as one.
func (v *verbosityCounter) Set(s string) error {
	if s == "" {
		v.count++
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid verbosity value: %w", err)
	}
	if n < 0 {
		return errors.New("verbosity must be non-negative")
	}
	v.count += n
	return nil
}

// String returns the string representation of the flag value.
func (v *verbosityCounter) String() string {
	return strconv.Itoa(v.count)
}

// Value returns the accumulated verbosity level.
func (v *verbosityCounter) Value() int {
	return v.count
}

// trackedDurationFlag is a flag.Value implementation that tracks whether a flag was set.
type trackedDurationFlag struct {
	value time.Duration
	set   bool
}

// Set parses the string value as a duration and stores it.
func (f *trackedDurationFlag) Set(s string) error {
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	f.value = v
	f.set = true
	return nil
}

// String returns the string representation of the flag value.
func (f *trackedDurationFlag) String() string {
	return f.value.String()
}

// Value returns the duration value of the flag.
func (f *trackedDurationFlag) Value() time.Duration {
	return f.value
}

// WasSet returns true if the flag was set.
func (f *trackedDurationFlag) WasSet() bool {
	return f.set
}

// newTrackedDurationFlag creates a new trackedDurationFlag with the given default value.
func newTrackedDurationFlag(defaultValue time.Duration) trackedDurationFlag {
	return trackedDurationFlag{value: defaultValue}
}

// trackedBoolFlag is a flag.Value implementation that tracks whether a flag was set.
type trackedBoolFlag struct {
	value bool
	set   bool
}

// Set parses the string value as a boolean and stores it.
func (f *trackedBoolFlag) Set(s string) error {
	v, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	f.value = v
	f.set = true
	return nil
}

// String returns the string representation of the flag value.
func (f *trackedBoolFlag) String() string {
	return strconv.FormatBool(f.value)
}

// IsBoolFlag marks the flag as boolean so it can be used without a value.
func (f *trackedBoolFlag) IsBoolFlag() bool {
	return true
}

// Value returns the boolean value of the flag.
func (f *trackedBoolFlag) Value() bool {
	return f.value
}

// WasSet returns true if the flag was set.
func (f *trackedBoolFlag) WasSet() bool {
	return f.set
}
