package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/getmockd/stubserver/pkg/cli/internal/output"
	"github.com/getmockd/stubserver/pkg/config"
	"github.com/getmockd/stubserver/pkg/expect"
	"github.com/getmockd/stubserver/pkg/filestore"
	"github.com/getmockd/stubserver/pkg/ftpstub"
	"github.com/getmockd/stubserver/pkg/httpstub"
	"github.com/getmockd/stubserver/pkg/logging"
	"github.com/getmockd/stubserver/pkg/requestlog"
)

// serveFlagVals is the package-level instance bound to cobra flags.
var serveFlagVals serveFlags

// serveFlags holds all parsed command-line flags for the serve command.
type serveFlags struct {
	configFile string
	host       string
	httpPort   int
	ftpPort    int
	duration   time.Duration
	ftpDump    string
	journal    string
	logLevel   string
	logFormat  string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the stubs from a definition file in the foreground",
	Long: `Run the HTTP and FTP stubs described by a definition file.

The servers run until SIGINT or SIGTERM, or until --duration elapses. They
are then stopped, captured request bodies are printed, and the HTTP
expectations are verified. The command fails if any expectation never
consumed a request.`,
	Example: `  # Serve until interrupted
  stubserver serve --config stubs.yaml

  # Override ports and stop after a fixed time
  stubserver serve --config stubs.yaml --http-port 8998 --ftp-port 2121 --duration 1m

  # Keep what clients uploaded over FTP
  stubserver serve --config stubs.yaml --ftp-dump ./uploads`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runServe(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), &serveFlagVals)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	f := &serveFlagVals
	serveCmd.Flags().StringVarP(&f.configFile, "config", "c", "", "Path to the definition file (YAML or JSON)")
	serveCmd.Flags().StringVar(&f.host, "host", "", "Interface to bind (default localhost)")
	serveCmd.Flags().IntVar(&f.httpPort, "http-port", -1, "HTTP stub port, overriding the file (0 = random)")
	serveCmd.Flags().IntVar(&f.ftpPort, "ftp-port", -1, "FTP stub port, overriding the file (0 = random)")
	serveCmd.Flags().DurationVar(&f.duration, "duration", 0, "Stop after this long (0 = wait for a signal)")
	serveCmd.Flags().StringVar(&f.ftpDump, "ftp-dump", "", "Write the FTP file store to this directory on exit")
	serveCmd.Flags().StringVar(&f.journal, "journal", "", "Write the request journal as JSON to this file on exit")
	serveCmd.Flags().StringVar(&f.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	serveCmd.Flags().StringVar(&f.logFormat, "log-format", "text", "Log format (text, json)")
	_ = serveCmd.MarkFlagRequired("config")
}

// stubs holds the servers built from one definition file.
type stubs struct {
	http         *httpstub.Server
	ftp          *ftpstub.Server
	expectations []*expect.Expectation
	journal      *requestlog.MemoryStore
}

func buildStubs(file *config.File, f *serveFlags, log *slog.Logger) (*stubs, error) {
	s := &stubs{journal: requestlog.NewMemoryStore(requestlog.DefaultCapacity)}

	if file.HTTP != nil {
		port := file.HTTP.Port
		if f.httpPort >= 0 {
			port = f.httpPort
		}
		opts := []httpstub.Option{
			httpstub.WithLogger(log.With("server", "http")),
			httpstub.WithBaseDir(file.BaseDir),
			httpstub.WithRequestLog(s.journal),
		}
		if f.host != "" {
			opts = append(opts, httpstub.WithHost(f.host))
		}
		s.http = httpstub.New(port, opts...)

		var err error
		if s.expectations, err = file.ApplyHTTP(s.http); err != nil {
			return nil, err
		}
	}

	if file.FTP != nil {
		port := file.FTP.Port
		if f.ftpPort >= 0 {
			port = f.ftpPort
		}
		opts := []ftpstub.Option{
			ftpstub.WithLogger(log.With("server", "ftp")),
			ftpstub.WithRequestLog(s.journal),
		}
		if f.host != "" {
			opts = append(opts, ftpstub.WithHost(f.host))
		}
		if file.FTP.Welcome != "" {
			opts = append(opts, ftpstub.WithWelcome(file.FTP.Welcome))
		}
		s.ftp = ftpstub.New(port, opts...)

		if _, err := file.ApplyFTP(s.ftp); err != nil {
			return nil, err
		}
	}

	if s.http == nil && s.ftp == nil {
		return nil, ErrNoServers
	}
	return s, nil
}

func runServe(ctx context.Context, stdout, stderr io.Writer, f *serveFlags) error {
	log := logging.New(logging.Config{
		Level:  logging.ParseLevel(f.logLevel),
		Format: logging.ParseFormat(f.logFormat),
		Output: stderr,
	})

	file, err := config.Load(f.configFile)
	if err != nil {
		return err
	}
	s, err := buildStubs(file, f, log)
	if err != nil {
		return err
	}

	if f.duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.duration)
		defer cancel()
	}

	g, gctx := errgroup.WithContext(ctx)
	if s.http != nil {
		g.Go(func() error {
			if err := s.http.Run(); err != nil {
				return err
			}
			log.Info("http stub listening", "url", s.http.URL(), "expectations", len(s.expectations))
			<-gctx.Done()
			return s.http.Stop()
		})
	}
	if s.ftp != nil {
		g.Go(func() error {
			if err := s.ftp.Run(); err != nil {
				return err
			}
			log.Info("ftp stub listening", "addr", s.ftp.Addr().String(), "files", s.ftp.Store().Len())
			<-gctx.Done()
			return s.ftp.Stop()
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("stubs stopped", "requests", s.journal.Count())

	return s.report(stdout, stderr, f)
}

// report writes captures and artifacts, then verifies the HTTP expectations.
func (s *stubs) report(stdout, stderr io.Writer, f *serveFlags) error {
	for _, exp := range s.expectations {
		if exp.Capture == nil || !exp.Capture.Fired() {
			continue
		}
		fmt.Fprintf(stdout, "captured %s:\n%s\n", exp, exp.Capture.Body())
	}

	var errs []error
	if f.ftpDump != "" && s.ftp != nil {
		if err := dumpStore(s.ftp.Store(), f.ftpDump, stderr); err != nil {
			errs = append(errs, err)
		}
	}
	if f.journal != "" {
		if err := writeJournal(s.journal, f.journal); err != nil {
			errs = append(errs, err)
		}
	}

	if s.http != nil {
		if err := s.http.Verify(); err != nil {
			fmt.Fprintln(stderr, err)
			errs = append(errs, ErrUnsatisfied)
		} else {
			fmt.Fprintf(stdout, "all %d expectations satisfied\n", len(s.expectations))
		}
	}
	return errors.Join(errs...)
}

// dumpStore writes every stored file under dir. Names that would escape dir
// are skipped with a warning.
func dumpStore(store *filestore.Store, dir string, stderr io.Writer) error {
	for _, name := range store.List() {
		if !filepath.IsLocal(filepath.FromSlash(name)) {
			output.Warn(stderr, "skipping FTP file %q: not a local path", name)
			continue
		}
		data, ok := store.Retrieve(name)
		if !ok {
			continue
		}
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("dumping FTP store: %w", err)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("dumping FTP store: %w", err)
		}
	}
	return nil
}

func writeJournal(store requestlog.Store, path string) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("writing journal: %w", err)
	}
	if err := output.JSON(out, store.List(nil)); err != nil {
		out.Close()
		return fmt.Errorf("writing journal: %w", err)
	}
	return out.Close()
}
