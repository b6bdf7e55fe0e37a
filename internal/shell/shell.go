package shell

import (
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chzyer/readline"

	"github.com/avriley/tonearm/internal/audio"
	"github.com/avriley/tonearm/internal/config"
	"github.com/avriley/tonearm/internal/eq"
	"github.com/avriley/tonearm/internal/events"
	"github.com/avriley/tonearm/internal/library"
	"github.com/avriley/tonearm/internal/playlist"
	"github.com/avriley/tonearm/internal/search"
)

// Shell is the interactive front end: a readline command loop plus a
// periodic tick that refreshes playback state and performs auto-advance.
// It is the only caller of the engine and navigator.
type Shell struct {
	cfg      *config.Config
	engine   *audio.Engine
	store    *library.Store
	searcher *search.Engine
	bus      *events.Bus

	mu      sync.Mutex
	nav     *playlist.Navigator
	current int // list index of the loaded track, -1 when none

	tickBusy atomic.Bool
	done     chan struct{}
	rl       *readline.Instance
}

func New(cfg *config.Config, engine *audio.Engine, nav *playlist.Navigator, store *library.Store, bus *events.Bus) *Shell {
	return &Shell{
		cfg:      cfg,
		engine:   engine,
		store:    store,
		searcher: search.NewEngine(cfg),
		bus:      bus,
		nav:      nav,
		current:  -1,
		done:     make(chan struct{}),
	}
}

// Run blocks on the command loop until quit or EOF.
func (s *Shell) Run() error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:      "tonearm> ",
		HistoryFile: s.cfg.Shell.HistoryFile,
	})
	if err != nil {
		return err
	}
	s.rl = rl
	defer rl.Close()

	if s.bus != nil {
		s.bus.Subscribe(events.LibraryChanged, func(interface{}) {
			s.reloadLibrary()
		})
		defer s.bus.Unsubscribe(events.LibraryChanged)
	}

	go s.tickLoop()
	defer close(s.done)

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		quit := s.dispatch(parseCommand(line))
		if quit {
			return nil
		}
	}
}

// dispatch executes one parsed command. Errors are reported to the user
// exactly once and never retried.
func (s *Shell) dispatch(cmd command) bool {
	switch cmd.kind {
	case cmdHelp:
		s.printHelp()
	case cmdList:
		s.printList()
	case cmdPlay:
		s.handlePlay(cmd.args)
	case cmdPause:
		s.engine.Pause()
	case cmdResume:
		s.engine.Resume()
	case cmdToggle:
		if s.engine.IsPlaying() {
			s.engine.Pause()
		} else {
			s.engine.Resume()
		}
	case cmdStop:
		s.engine.Stop()
	case cmdNext:
		s.handleNext()
	case cmdPrev:
		s.handlePrev()
	case cmdSeek:
		s.handleSeek(cmd.args)
	case cmdSearch:
		s.handleSearch(cmd.args)
	case cmdFind:
		s.handleFind(cmd.args)
	case cmdShuffle:
		on := s.navigator().ToggleShuffle()
		s.printf("shuffle: %v\n", on)
	case cmdRepeat:
		on := s.navigator().ToggleRepeatOne()
		s.printf("repeat-one: %v\n", on)
	case cmdEq:
		s.handleEq(cmd.args)
	case cmdVolume:
		s.handleVolume(cmd.args)
	case cmdStatus:
		s.printStatus()
	case cmdQuit:
		s.engine.Stop()
		return true
	default:
		if len(cmd.args) > 0 {
			s.printf("unknown command %q, try help\n", cmd.args[0])
		}
	}
	return false
}

func (s *Shell) navigator() *playlist.Navigator {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nav
}

func (s *Shell) currentIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// playIndex loads and starts the track at a list index, records the
// discovered duration in the store and announces the change.
func (s *Shell) playIndex(index int) {
	nav := s.navigator()
	track, ok := nav.Track(index)
	if !ok {
		s.printf("no track %d\n", index)
		return
	}

	// A duration cached from an earlier run spares the engine the
	// decode-based probe for headerless files.
	if track.Duration == 0 && s.store != nil {
		if d, ok := s.store.Duration(track.Path); ok {
			track.Duration = d
		}
	}
	if track.Duration > 0 {
		s.engine.SetDurationHint(track.Path, track.Duration)
	}

	if err := s.engine.PlayFile(track.Path); err != nil {
		s.printf("error: %v\n", err)
		return
	}

	s.mu.Lock()
	s.current = index
	s.mu.Unlock()

	if s.store != nil {
		if d, known := s.engine.TotalDuration(); known {
			if err := s.store.SaveDuration(track.Path, d); err != nil && s.cfg.Debug {
				log.Printf("[SHELL] Failed to cache duration: %v", err)
			}
		}
	}
	if s.bus != nil {
		s.bus.Publish(events.TrackStarted, track)
	}
	s.printf("playing: %s\n", track.Title)
}

func (s *Shell) handlePlay(args []string) {
	if len(args) == 0 {
		// Bare play: resume if paused, else start the first filtered track.
		if !s.engine.IsPlaying() && s.engine.CurrentPath() != "" {
			s.engine.Resume()
			return
		}
		s.playFirst()
		return
	}

	index, err := strconv.Atoi(args[0])
	if err != nil {
		s.printf("usage: play <index>\n")
		return
	}
	s.playIndex(index)
}

// playFirst starts the first filtered track; it is the fallback for play,
// next and prev when no track is loaded yet.
func (s *Shell) playFirst() {
	if first, ok := s.navigator().First(); ok {
		s.playIndex(first)
		return
	}
	s.printf("nothing to play\n")
}

func (s *Shell) handleNext() {
	if s.currentIndex() < 0 {
		s.playFirst()
		return
	}
	next, ok := s.navigator().Next(s.currentIndex())
	if !ok {
		s.printf("end of list\n")
		return
	}
	s.playIndex(next)
}

func (s *Shell) handlePrev() {
	if s.currentIndex() < 0 {
		s.playFirst()
		return
	}
	index, restart, ok := s.navigator().Prev(s.currentIndex(), s.engine.CurrentPosition())
	if !ok {
		s.printf("start of list\n")
		return
	}
	if restart {
		if err := s.engine.SeekTo(0); err != nil {
			s.printf("error: %v\n", err)
		}
		return
	}
	s.playIndex(index)
}

func (s *Shell) handleSeek(args []string) {
	if len(args) == 0 {
		s.printf("usage: seek <seconds>\n")
		return
	}
	secs, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		s.printf("usage: seek <seconds>\n")
		return
	}
	if err := s.engine.SeekTo(time.Duration(secs * float64(time.Second))); err != nil {
		s.printf("error: %v\n", err)
	}
}

func (s *Shell) handleSearch(args []string) {
	query := strings.Join(args, " ")
	nav := s.navigator()
	nav.SetSearch(query)
	s.printList()
}

func (s *Shell) handleFind(args []string) {
	query := strings.Join(args, " ")
	nav := s.navigator()
	tracks := nav.Tracks()
	for _, index := range s.searcher.Search(tracks, query) {
		s.printf("%4d  %s\n", index, tracks[index].Title)
	}
}

func (s *Shell) handleEq(args []string) {
	eqz := s.engine.Equalizer()

	switch {
	case len(args) == 0:
		gains := eqz.Snapshot()
		for i, g := range gains {
			s.printf("%6.0f Hz  %+5.1f dB\n", eq.BandFrequencies[i], g)
		}
	case args[0] == "flat":
		if err := s.engine.ApplyEqualizer([eq.NumBands]float64{}); err != nil {
			s.printf("error: %v\n", err)
		}
	case len(args) == 2:
		band, err1 := strconv.Atoi(args[0])
		gain, err2 := strconv.ParseFloat(args[1], 64)
		if err1 != nil || err2 != nil || band < 0 || band >= eq.NumBands {
			s.printf("usage: eq <band 0-9> <gain -12..12>\n")
			return
		}
		if gain > 12 {
			gain = 12
		}
		if gain < -12 {
			gain = -12
		}
		if err := s.engine.ApplyBandGain(band, gain); err != nil {
			s.printf("error: %v\n", err)
		}
	default:
		s.printf("usage: eq [flat | <band> <gain>]\n")
	}
}

func (s *Shell) handleVolume(args []string) {
	if len(args) == 0 {
		s.printf("usage: vol <0..1>\n")
		return
	}
	level, err := strconv.ParseFloat(args[0], 64)
	if err != nil || level < 0 || level > 1 {
		s.printf("usage: vol <0..1>\n")
		return
	}
	s.engine.SetVolume(level)
}

func (s *Shell) printList() {
	nav := s.navigator()
	for _, index := range nav.Filtered() {
		track, ok := nav.Track(index)
		if !ok {
			continue
		}
		marker := "  "
		if index == s.currentIndex() {
			marker = "> "
		}
		if track.Duration > 0 {
			s.printf("%s%4d  %s  (%s)\n", marker, index, track.Title, formatTime(track.Duration))
		} else {
			s.printf("%s%4d  %s\n", marker, index, track.Title)
		}
	}
}

func (s *Shell) printStatus() {
	nav := s.navigator()
	pos := s.engine.CurrentPosition()

	state := "stopped"
	switch {
	case s.engine.IsPlaying():
		state = "playing"
	case s.engine.CurrentPath() != "":
		state = "paused"
	}

	if total, known := s.engine.TotalDuration(); known {
		s.printf("%s  %s / %s\n", state, formatTime(pos), formatTime(total))
	} else if s.engine.CurrentPath() != "" {
		s.printf("%s  %s / --:--\n", state, formatTime(pos))
	} else {
		s.printf("%s\n", state)
	}
	s.printf("shuffle: %v  repeat-one: %v\n", nav.ShuffleEnabled(), nav.RepeatOneEnabled())
}

func (s *Shell) printHelp() {
	s.printf(`commands:
  list                 show the filtered track list
  play [index]         start a track (bare: resume or first match)
  pause / resume / t   pause, resume, toggle
  stop                 stop playback
  next / prev          move through the list
  seek <seconds>       jump inside the current track
  search <text>        filter the list (empty: all)
  find <text>          ranked title search
  shuffle / repeat     toggle shuffle, repeat-one
  eq [flat|band gain]  show or adjust the 10-band equalizer
  vol <0..1>           output volume
  status               current state
  quit                 leave
`)
}

// tickLoop drives display refresh and auto-advance. A tick that is still
// running when the next fires makes the next one a no-op, so at most one
// tick ever holds the engine lock.
func (s *Shell) tickLoop() {
	interval := time.Duration(s.cfg.Shell.TickMs) * time.Millisecond
	if interval <= 0 {
		interval = 200 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.tick()
		case <-s.done:
			return
		}
	}
}

func (s *Shell) tick() {
	if !s.tickBusy.CompareAndSwap(false, true) {
		return
	}
	defer s.tickBusy.Store(false)

	if !s.engine.Finished() {
		return
	}

	next, ok := s.navigator().AutoAdvance(s.currentIndex())
	if !ok {
		// End of the traversal order: playback simply stops.
		s.engine.Stop()
		if s.bus != nil {
			s.bus.Publish(events.PlaybackEnded, nil)
		}
		return
	}
	s.playIndex(next)
}

// reloadLibrary rescans the music directory after a watcher event and
// swaps in a fresh navigator, carrying over the search query, the mode
// flags and the loaded track when it still exists. A fresh shuffle
// permutation is captured over the rescanned list.
func (s *Shell) reloadLibrary() {
	tracks, err := library.Scan(s.cfg.Library.MusicDir, s.cfg.Debug)
	if err != nil {
		if s.cfg.Debug {
			log.Printf("[SHELL] Library rescan failed: %v", err)
		}
		return
	}
	if s.store != nil {
		if err := s.store.SaveTracks(tracks); err != nil && s.cfg.Debug {
			log.Printf("[SHELL] Failed to save rescan: %v", err)
		}
		if err := s.store.LoadDurations(tracks); err != nil && s.cfg.Debug {
			log.Printf("[SHELL] Failed to load cached durations: %v", err)
		}
	}

	old := s.navigator()
	nav := playlist.NewNavigator(tracks)
	nav.SetSearch(old.Query())
	if old.ShuffleEnabled() {
		nav.ToggleShuffle()
	}
	if old.RepeatOneEnabled() {
		nav.ToggleRepeatOne()
	}
	currentPath := s.engine.CurrentPath()

	s.mu.Lock()
	s.nav = nav
	s.current = -1
	if currentPath != "" {
		for i, track := range nav.Tracks() {
			if track.Path == currentPath {
				s.current = i
				break
			}
		}
	}
	s.mu.Unlock()
}

func (s *Shell) printf(format string, args ...interface{}) {
	if s.rl != nil {
		fmt.Fprintf(s.rl.Stdout(), format, args...)
		return
	}
	fmt.Printf(format, args...)
}

func formatTime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int(d.Seconds())
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}
