package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/MKhiriev/go-pim-sync/internal/adapter"
	"github.com/MKhiriev/go-pim-sync/internal/config"
	"github.com/MKhiriev/go-pim-sync/internal/crypto"
	"github.com/MKhiriev/go-pim-sync/internal/logger"
	"github.com/MKhiriev/go-pim-sync/internal/peer"
	"github.com/MKhiriev/go-pim-sync/models"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrNoAdminURL     = errors.New("admin url is not configured")
	ErrNoPeerAddress  = errors.New("device address is not configured")
)

// Syncer runs a sync session against the device.
type Syncer interface {
	Sync(ctx context.Context, datasets []models.Dataset) ([]*peer.DatasetResult, error)
}

var _ Client = (*App)(nil)

type App struct {
	cfg       config.Peer
	admin     adapter.AdminClient
	buildInfo models.AppBuildInfo
	hasher    crypto.CredentialHasher
	out       io.Writer

	// newSyncer is replaced in tests.
	newSyncer func() (Syncer, error)

	logger *logger.Logger
}

// NewApp returns the desktop tool. admin may be nil when no admin URL is
// configured.
func NewApp(cfg config.Peer, admin adapter.AdminClient, buildInfo models.AppBuildInfo, out io.Writer, logger *logger.Logger) *App {
	a := &App{
		cfg:       cfg,
		admin:     admin,
		buildInfo: buildInfo,
		hasher:    crypto.NewCredentialHasher(),
		out:       out,
		logger:    logger,
	}
	a.newSyncer = a.dirSyncer
	return a
}

func (a *App) dirSyncer() (Syncer, error) {
	if a.cfg.Address == "" {
		return nil, ErrNoPeerAddress
	}
	store, err := peer.NewDirStore(a.cfg.OutputDir)
	if err != nil {
		return nil, err
	}
	return peer.NewDriver(a.cfg, store, a.logger), nil
}

// Run implements [Client]. Commands:
//
//	sync [dataset ...]   sync the named datasets, all when none given
//	status               show the device session
//	revoke               make the device forget every paired desktop
//	credential           print a fresh credential for PEER_CREDENTIAL
//	version              show tool and device versions
func (a *App) Run(ctx context.Context, args []string) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	command := "sync"
	if len(args) > 0 {
		command, args = args[0], args[1:]
	}

	switch command {
	case "sync":
		return a.sync(ctx, args)
	case "status":
		return a.status(ctx)
	case "revoke":
		return a.revoke(ctx)
	case "credential":
		return a.credential()
	case "version":
		return a.version(ctx)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, command)
	}
}

func (a *App) sync(ctx context.Context, names []string) error {
	datasets := models.Datasets
	if len(names) > 0 {
		datasets = make([]models.Dataset, 0, len(names))
		for _, name := range names {
			ds, err := models.ParseDataset(name)
			if err != nil {
				return err
			}
			datasets = append(datasets, ds)
		}
	}

	syncer, err := a.newSyncer()
	if err != nil {
		return err
	}

	results, err := syncer.Sync(ctx, datasets)

	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DATASET\tMODE\tCREATED\tREPLACED\tREMOVED\tPUSHED\tSTATUS")
	for _, r := range results {
		mode, status := "two-way", "ok"
		if r.SlowSync {
			mode = "slow"
		}
		if r.Failed() {
			status = fmt.Sprintf("failed (%d errors)", r.Errors)
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%d\t%s\n",
			r.Dataset, mode, len(r.Created), len(r.Replaced), len(r.Removed), len(r.Mapped), status)
	}
	if flushErr := w.Flush(); flushErr != nil {
		return errors.Join(err, flushErr)
	}
	return err
}

func (a *App) status(ctx context.Context) error {
	if a.admin == nil {
		return ErrNoAdminURL
	}
	st, err := a.admin.Status(ctx)
	if err != nil {
		return mapAdminError(err)
	}

	if !st.Active {
		fmt.Fprintf(a.out, "no session running, %d trusted desktops\n", st.TrustedPeer)
		return nil
	}
	fmt.Fprintf(a.out, "session %s from %s over %s\n", st.SessionID, valueOr(st.PeerName, st.Remote), st.Transport)
	fmt.Fprintf(a.out, "state %s, dataset %s, started %s\n", st.State, valueOr(st.Dataset, "-"), st.StartedAt.Format("15:04:05"))
	fmt.Fprintf(a.out, "committed %v, %d trusted desktops\n", st.Committed, st.TrustedPeer)
	return nil
}

func (a *App) revoke(ctx context.Context) error {
	if a.admin == nil {
		return ErrNoAdminURL
	}
	if err := a.admin.RevokePeers(ctx); err != nil {
		return mapAdminError(err)
	}
	fmt.Fprintln(a.out, "device forgot all paired desktops")
	return nil
}

// credential prints a new credential. The device trusts it after the owner
// accepts the first connection that presents it.
func (a *App) credential() error {
	c, err := a.hasher.NewCredential()
	if err != nil {
		return fmt.Errorf("generate credential: %w", err)
	}
	fmt.Fprintln(a.out, c)
	return nil
}

func (a *App) version(ctx context.Context) error {
	fmt.Fprint(a.out, a.buildInfo)
	fmt.Fprintf(a.out, "Protocol: %s\n", models.ProtocolVersion)

	if a.admin == nil {
		return nil
	}
	info, err := a.admin.Version(ctx)
	if err != nil {
		return mapAdminError(err)
	}
	fmt.Fprintf(a.out, "Device: %s (protocol %s, commit %s)\n", info.Version, info.Protocol, info.BuildCommit)
	return nil
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
