package app

import (
	"context"

	"github.com/kaelos/kael-go/internal/application/completion"
	"github.com/kaelos/kael-go/internal/application/doctor"
	"github.com/kaelos/kael-go/internal/domain"
	"github.com/kaelos/kael-go/internal/infrastructure/ai"
	"github.com/kaelos/kael-go/internal/infrastructure/auth"
	"github.com/kaelos/kael-go/internal/infrastructure/config"
	"github.com/kaelos/kael-go/internal/infrastructure/keystore"
	"github.com/kaelos/kael-go/internal/infrastructure/prefs"
	"github.com/kaelos/kael-go/internal/infrastructure/transcript"
	"github.com/kaelos/kael-go/internal/infrastructure/vault"
	"github.com/kaelos/kael-go/internal/pkg/logger"
	"github.com/kaelos/kael-go/internal/ports"
)

// Container wires up application services with infrastructure adapters.
type Container struct {
	Config            domain.Config
	Logger            ports.Logger
	CompletionService *completion.Service
	DoctorService     *doctor.Service
	KeyStore          ports.KeyStore
	Sessions          ports.SessionSource
	Prefs             ports.PreferenceStore
	Transcript        ports.TranscriptRepository
}

// BuildContainer constructs the dependency graph.
func BuildContainer(ctx context.Context, verbose bool) (*Container, error) {
	cfgLoader := config.NewFileLoader("")
	cfg, err := cfgLoader.Load(ctx)
	if err != nil {
		return nil, err
	}

	log := logger.NewStd(verbose)
	aesVault := vault.New()
	sessions := auth.NewFileSource("")
	prefStore := prefs.NewFileStore("", log)
	transcriptStore := transcript.NewSQLiteStore(cfg.Transcript.DatabasePath)

	remoteKeys := keystore.NewFirestore(cfg.Remote, aesVault, log)
	keys := keystore.NewCached(remoteKeys, aesVault, "", log)

	factory := ai.NewFactory(cfg.Endpoints)

	completionService := &completion.Service{
		Factory:  factory,
		KeyStore: keys,
		Prober:   factory.Prober(),
		Logger:   log,
	}

	doctorService := &doctor.Service{
		Config:   cfg,
		Prober:   factory.Prober(),
		Prefs:    prefStore,
		Sessions: sessions,
	}

	return &Container{
		Config:            cfg,
		Logger:            log,
		CompletionService: completionService,
		DoctorService:     doctorService,
		KeyStore:          keys,
		Sessions:          sessions,
		Prefs:             prefStore,
		Transcript:        transcriptStore,
	}, nil
}
