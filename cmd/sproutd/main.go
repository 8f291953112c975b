package main

import (
	"context"
	"log/slog"
	"os"

	"sprout/config"
	"sprout/internal/delivery"
	"sprout/internal/delivery/http"
	httpmiddleware "sprout/internal/delivery/http/middleware"
	"sprout/internal/delivery/http/router/handler"
	deliverymiddleware "sprout/internal/delivery/middleware"
	"sprout/internal/domain/service"
	"sprout/internal/infra/firebase"
	logs "sprout/internal/infra/log"
	"sprout/internal/infra/notification"
	"sprout/internal/infra/persistence/firestore"
	"sprout/internal/infra/persistence/rtdb"
	"sprout/internal/infra/qrcode"
	"sprout/internal/infra/storage"
	"sprout/internal/usecase/impl"

	"go.uber.org/fx"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	fx.New(
		injectInfra(),
		injectRepo(),
		injectService(),
		injectUsecase(),
		injectDelivery(),
		injectMiddleware(),
		injectHandler(),
		fx.Invoke(
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Provide(
		config.New,
		logs.New,
		context.Background,
		firebase.NewApp,
	)
}

func injectRepo() fx.Option {
	return fx.Options(
		fx.Provide(
			firestore.NewDocumentStore,
			rtdb.NewRealtimeStore,
		),
	)
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			storage.NewPhotoStorage,
			notification.NewPushSender,
			newPairingCodeService,
		),
	)
}

// newPairingCodeService creates a pairing QR service with dependency injection
func newPairingCodeService(cfg *config.Config) service.PairingCodeService {
	if cfg.QRCode == nil {
		// Use default values if not configured
		return qrcode.NewPairingCodeService(256, "M")
	}

	return qrcode.NewPairingCodeService(cfg.QRCode.Size, cfg.QRCode.ErrorCorrectionLevel)
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewUserService,
			impl.NewDeviceService,
		),
	)
}

func injectMiddleware() fx.Option {
	return fx.Options(
		fx.Provide(
			httpmiddleware.NewErrorMiddleware,
			deliverymiddleware.NewRequestIDMiddleware,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewAuthHandler,
			handler.NewDeviceHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				http.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

func startServer(ctx context.Context, params startServerParams) {
	for _, delivery := range params.Deliveries {
		go func() {
			if err := delivery.Serve(ctx); err != nil {
				slog.Error("Failed to start server", slog.Any("error", err))
				os.Exit(1)
			}
		}()
	}
}
