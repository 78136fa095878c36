package cli

import (
	"context"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/hwcart/internal/cart"
	"github.com/roach88/hwcart/internal/config"
	"github.com/roach88/hwcart/internal/money"
	"github.com/roach88/hwcart/internal/notify"
	"github.com/roach88/hwcart/internal/remote"
	"github.com/roach88/hwcart/internal/store"
)

// session is everything one command invocation needs.
type session struct {
	ctx    context.Context
	cfg    config.Config
	logger *slog.Logger
	out    *OutputFormatter
	money  *money.Formatter
	store  *store.Store
	ctrl   *cart.Controller
	nav    *handoffNavigator
}

// handoffNavigator records the checkout signal; the CLI reports it instead
// of switching screens.
type handoffNavigator struct {
	logger *slog.Logger
	key    string
}

func (n *handoffNavigator) GoToCheckout(ctx context.Context, payloadKey string) {
	n.key = payloadKey
	n.logger.Info("checkout ready", "payload_key", payloadKey)
}

func newLogger(w io.Writer, lc config.LogConfig, verbose bool) *slog.Logger {
	level := lc.SlogLevel()
	if verbose {
		level = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{Level: level}
	if lc.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(w, handlerOpts))
}

// openSession loads config and wires the controller to the HTTP client and
// the local payload store. Failures are already reported on out.
func openSession(cmd *cobra.Command, opts *RootOptions) (*session, error) {
	out := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fail(out, ExitCommandError, "CONFIG", "failed to load config", err)
	}
	logger := newLogger(cmd.ErrOrStderr(), cfg.Log, opts.Verbose)

	mf, err := money.NewFormatter(cfg.Currency.Code, cfg.Currency.Symbol, cfg.Currency.Locale)
	if err != nil {
		return nil, fail(out, ExitCommandError, "CONFIG", "invalid currency settings", err)
	}

	client, err := remote.New(cfg.API.BaseURL,
		remote.WithTimeout(cfg.API.RequestTimeout()),
		remote.WithToken(cfg.API.Token),
		remote.WithLogger(logger),
	)
	if err != nil {
		return nil, fail(out, ExitCommandError, "CONFIG", "invalid api settings", err)
	}

	out.VerboseLog("opening payload store %s", cfg.Store.Path)
	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		return nil, fail(out, ExitCommandError, "STORE", "failed to open payload store", err)
	}

	var notifier cart.Notifier = &notify.Printer{W: cmd.ErrOrStderr()}
	if opts.Verbose {
		notifier = notify.Multi{notifier, notify.Log{Logger: logger}}
	}
	nav := &handoffNavigator{logger: logger}

	ctrl := cart.NewController(cfg.Actor.Actor(), cart.Deps{
		Cart:      client,
		Catalog:   client,
		Payloads:  st,
		Notifier:  notifier,
		Navigator: nav,
	}, cart.WithLogger(logger), cart.WithCheckoutKey(cfg.Checkout.Key))

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	return &session{
		ctx:    ctx,
		cfg:    cfg,
		logger: logger,
		out:    out,
		money:  mf,
		store:  st,
		ctrl:   ctrl,
		nav:    nav,
	}, nil
}

func (s *session) close() {
	if err := s.store.Close(); err != nil {
		s.logger.Error("error closing payload store", "error", err)
	}
}

// load fetches the cart. A malformed response has already been recovered
// as an empty cart and is not a command failure.
func (s *session) load() error {
	err := s.ctrl.Load(s.ctx)
	if err == nil || cart.CodeOf(err) == cart.CodeMalformedResponse {
		return nil
	}
	return s.cartFailure("failed to load cart", err)
}

// cartFailure reports err, using the gate's wording for denials.
func (s *session) cartFailure(message string, err error) error {
	if cart.IsDenied(err) {
		message = s.ctrl.Gate().Message()
	}
	return cartFailure(s.out, message, err)
}
