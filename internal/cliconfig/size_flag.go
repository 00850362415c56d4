package cliconfig

import (
	"strconv"

	pflag "github.com/spf13/pflag"
)

// sizeValue is a pflag.Value holding a byte count written as "2000000",
// "2MB" or "1.5MiB".
type sizeValue struct {
	set func(int64)
	get func() int64
}

// SizeVar returns a flag value that parses human-readable sizes into dst.
func SizeVar(dst *int) pflag.Value {
	return &sizeValue{
		set: func(n int64) { *dst = int(n) },
		get: func() int64 { return int64(*dst) },
	}
}

// Size64Var is SizeVar for int64 destinations.
func Size64Var(dst *int64) pflag.Value {
	return &sizeValue{
		set: func(n int64) { *dst = n },
		get: func() int64 { return *dst },
	}
}

func (v *sizeValue) Set(s string) error {
	n, err := ParseSize(s)
	if err != nil {
		return err
	}
	v.set(n)
	return nil
}

func (v *sizeValue) String() string {
	return strconv.FormatInt(v.get(), 10)
}

func (v *sizeValue) Type() string {
	return "size"
}
