// ABOUTME: Command-line play list: positional files with per-file options
// ABOUTME: Parses -l, -r, -v, -s and -e between file names and drives playback order
package playlist

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"
)

var ErrUsage = errors.New("usage error")

// volumeUnset marks entries parsed before any -v
const volumeUnset = -1

// Entry is one file with the options in effect when it was named
type Entry struct {
	Path   string
	Repeat int
	Volume float64
	Start  time.Duration
	End    time.Duration
}

// Playlist is the ordered list of files to play
type Playlist struct {
	Entries []Entry
	Loop    bool
}

// Player plays a single file
type Player interface {
	Play(path string, start, end time.Duration, volume float64) error
}

// Parse reads args in order. -v applies to every later file; -r, -s and -e
// apply to the next file only; -l loops the whole list. Any other flag is
// looked up in globals and set there. Everything after "--" is a file.
func Parse(args []string, globals *flag.FlagSet) (*Playlist, error) {
	p := &Playlist{}
	volume := float64(volumeUnset)
	next := Entry{Repeat: 1}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			for _, path := range args[i+1:] {
				p.add(&next, path, volume)
			}
			break
		}
		if len(arg) < 2 || arg[0] != '-' {
			p.add(&next, arg, volume)
			continue
		}

		name, value, hasValue := strings.Cut(strings.TrimLeft(arg, "-"), "=")
		if name == "l" {
			p.Loop = true
			continue
		}

		if !hasValue && needsValue(name, globals) {
			if i+1 >= len(args) {
				return nil, fmt.Errorf("%w: flag needs an argument: -%s", ErrUsage, name)
			}
			i++
			value = args[i]
		}

		var err error
		switch name {
		case "r":
			next.Repeat, err = strconv.Atoi(value)
			if err == nil && next.Repeat < 1 {
				err = errors.New("must be at least 1")
			}
		case "v":
			volume, err = strconv.ParseFloat(value, 64)
			if err == nil && volume < 0 {
				err = errors.New("must not be negative")
			}
		case "s":
			next.Start, err = seconds(value)
		case "e":
			next.End, err = seconds(value)
		default:
			err = setGlobal(globals, name, value, hasValue)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: -%s %s: %v", ErrUsage, name, value, err)
		}
	}
	return p, nil
}

func (p *Playlist) add(next *Entry, path string, volume float64) {
	next.Path = path
	next.Volume = volume
	p.Entries = append(p.Entries, *next)
	*next = Entry{Repeat: 1}
}

func needsValue(name string, globals *flag.FlagSet) bool {
	switch name {
	case "r", "v", "s", "e":
		return true
	}
	if globals == nil {
		return false
	}
	f := globals.Lookup(name)
	if f == nil {
		return false
	}
	if b, ok := f.Value.(interface{ IsBoolFlag() bool }); ok && b.IsBoolFlag() {
		return false
	}
	return true
}

func setGlobal(globals *flag.FlagSet, name, value string, hasValue bool) error {
	if globals == nil || globals.Lookup(name) == nil {
		return errors.New("unknown flag")
	}
	if !hasValue && !needsValue(name, globals) {
		value = "true"
	}
	return globals.Set(name, value)
}

func seconds(value string) (time.Duration, error) {
	s, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, err
	}
	if s < 0 {
		return 0, errors.New("must not be negative")
	}
	return time.Duration(s * float64(time.Second)), nil
}

// SetDefaultVolume sets the volume of files named before any -v
func (p *Playlist) SetDefaultVolume(volume float64) {
	for i := range p.Entries {
		if p.Entries[i].Volume == volumeUnset {
			p.Entries[i].Volume = volume
		}
	}
}

// Result counts playback attempts
type Result struct {
	Played int
	Failed int
}

// Run plays every entry its repeat count, and the whole list again while
// Loop is set. It stops early when ctx is done, or when a looping pass
// played nothing successfully.
func (p *Playlist) Run(ctx context.Context, player Player) Result {
	var res Result
	for {
		pass := Result{}
		for _, e := range p.Entries {
			for n := 0; n < e.Repeat; n++ {
				if ctx.Err() != nil {
					return add(res, pass)
				}
				if err := player.Play(e.Path, e.Start, e.End, e.Volume); err != nil {
					pass.Failed++
					continue
				}
				pass.Played++
			}
		}
		res = add(res, pass)

		if !p.Loop {
			return res
		}
		if pass.Played == 0 {
			log.Printf("No file could be played, stopping loop")
			return res
		}
	}
}

func add(a, b Result) Result {
	return Result{Played: a.Played + b.Played, Failed: a.Failed + b.Failed}
}
