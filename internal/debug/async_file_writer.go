package debug

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
)

// TimeTicker fires at the top of every rotateHours-th hour.
type TimeTicker struct {
	stop chan struct{}
	C    <-chan time.Time
}

// NewTimeTicker creates a TimeTicker that notifies based on rotateHours parameter.
// if rotateHours is 1 and current time is 11:32 it means that the ticker will tick at 12:00
// if rotateHours is 2 and current time is 09:12 means that the ticker will tick at 11:00
// specially, if rotateHours is 0, then no rotation
func NewTimeTicker(rotateHours uint) *TimeTicker {
	ch := make(chan time.Time)
	tt := TimeTicker{
		stop: make(chan struct{}, 1),
		C:    ch,
	}
	if rotateHours > 0 {
		tt.startTicker(ch, rotateHours)
	}
	return &tt
}

// Stop ends the ticker. It never blocks.
func (tt *TimeTicker) Stop() {
	select {
	case tt.stop <- struct{}{}:
	default:
	}
}

func (tt *TimeTicker) startTicker(ch chan time.Time, rotateHours uint) {
	go func() {
		nextRotationHour := getNextRotationHour(time.Now(), rotateHours)
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case t := <-ticker.C:
				if t.Hour() == nextRotationHour {
					select {
					case ch <- t:
					case <-tt.stop:
						return
					}
					nextRotationHour = getNextRotationHour(time.Now(), rotateHours)
				}
			case <-tt.stop:
				return
			}
		}
	}()
}

func getNextRotationHour(now time.Time, delta uint) int {
	return now.Add(time.Hour * time.Duration(delta)).Hour()
}

// AsyncFileWriter is an io.Writer that hands log lines to a background
// goroutine writing them to an hourly rotated file. filePath is kept as a
// symlink to the current file. Lines are dropped when the buffer is full.
type AsyncFileWriter struct {
	filePath string
	fd       *os.File

	wg         sync.WaitGroup
	started    int32
	buf        chan []byte
	stop       chan struct{}
	timeTicker *TimeTicker
}

// NewAsyncFileWriter creates a writer buffering up to bufferLines lines.
func NewAsyncFileWriter(filePath string, bufferLines int64, rotateHours uint) (*AsyncFileWriter, error) {
	absFilePath, err := filepath.Abs(filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "log file path %q", filePath)
	}
	return &AsyncFileWriter{
		filePath:   absFilePath,
		buf:        make(chan []byte, bufferLines),
		stop:       make(chan struct{}),
		timeTicker: NewTimeTicker(rotateHours),
	}, nil
}

func (w *AsyncFileWriter) initLogFile() error {
	realFilePath := w.timeFilePath(w.filePath)
	fd, err := os.OpenFile(realFilePath, os.O_CREATE|os.O_APPEND|os.O_RDWR, 0644)
	if err != nil {
		return err
	}
	w.fd = fd

	if _, err = os.Lstat(w.filePath); err == nil {
		if err = os.Remove(w.filePath); err != nil {
			return err
		}
	}
	return os.Symlink(realFilePath, w.filePath)
}

// Start opens the log file and launches the writer goroutine.
func (w *AsyncFileWriter) Start() error {
	if !atomic.CompareAndSwapInt32(&w.started, 0, 1) {
		return errors.New("logger has already been started")
	}
	if err := w.initLogFile(); err != nil {
		atomic.StoreInt32(&w.started, 0)
		return err
	}

	w.wg.Add(1)
	go func() {
		defer func() {
			atomic.StoreInt32(&w.started, 0)

			w.flushBuffer()
			w.flushAndClose()

			w.wg.Done()
		}()

		for {
			select {
			case msg := <-w.buf:
				w.SyncWrite(msg)
			case <-w.stop:
				return
			}
		}
	}()
	return nil
}

func (w *AsyncFileWriter) flushBuffer() {
	for {
		select {
		case msg := <-w.buf:
			w.SyncWrite(msg)
		default:
			return
		}
	}
}

// SyncWrite writes msg to the current file, rotating it first if due.
func (w *AsyncFileWriter) SyncWrite(msg []byte) {
	w.rotateFile()
	if w.fd != nil {
		w.fd.Write(msg)
	}
}

func (w *AsyncFileWriter) rotateFile() {
	select {
	case <-w.timeTicker.C:
		if err := w.flushAndClose(); err != nil {
			fmt.Fprintf(os.Stderr, "flush and close file error. err=%s\n", err)
		}
		if err := w.initLogFile(); err != nil {
			fmt.Fprintf(os.Stderr, "init log file error. err=%s\n", err)
		}
	default:
	}
}

// Stop drains the buffer, closes the file and waits for the writer goroutine.
func (w *AsyncFileWriter) Stop() {
	if atomic.LoadInt32(&w.started) == 1 {
		w.stop <- struct{}{}
		w.wg.Wait()
	}
	w.timeTicker.Stop()
}

// Write queues a copy of msg.
func (w *AsyncFileWriter) Write(msg []byte) (n int, err error) {
	buf := make([]byte, len(msg))
	copy(buf, msg)

	select {
	case w.buf <- buf:
	default:
	}
	return len(msg), nil
}

func (w *AsyncFileWriter) flushAndClose() error {
	if w.fd == nil {
		return nil
	}
	err := w.fd.Sync()
	if err != nil {
		return err
	}
	err = w.fd.Close()
	w.fd = nil
	return err
}

func (w *AsyncFileWriter) timeFilePath(filePath string) string {
	return filePath + "." + time.Now().Format("2006-01-02_15")
}
