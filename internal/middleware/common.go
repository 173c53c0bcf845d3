package middleware

import (
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"
)

// Config customises the middleware registration pipeline.
type Config struct {
	Logger       *zerolog.Logger
	AccessLog    bool
	AccessOutput io.Writer
}

// Register attaches the common middlewares. CORS runs first so that preflights and
// rejected requests carry the headers too.
func Register(app *fiber.App, cfg Config) {
	requestLogger := zerolog.New(io.Discard)
	if cfg.Logger != nil {
		requestLogger = *cfg.Logger
	}

	app.Use(CORS())
	app.Use(recover.New())
	app.Use(CorrelationID())
	app.Use(Observability(requestLogger))
	if cfg.AccessLog {
		accessConfig := logger.Config{}
		if cfg.AccessOutput != nil {
			accessConfig.Output = cfg.AccessOutput
		}
		app.Use(logger.New(accessConfig))
	}
}
