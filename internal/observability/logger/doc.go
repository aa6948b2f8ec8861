// Package logger provides the Zap logger with context-based scoping.
//
// # Design Decisions
//
//   - Inyección explícita: el logger se construye una vez con New() en main.go
//     y se pasa a cada componente por constructor. No hay singleton global.
//   - Context Scoping: cada request puede tener su propio logger "scoped" con
//     campos adicionales (request_id, etc.) sin crear un nuevo core.
//   - Environments: "dev" usa consola con colores, "prod" usa JSON.
//   - Levels: debug, info, warn, error (configurable via LOG_LEVEL).
//
// # Usage
//
// Construcción (una vez en main.go):
//
//	log := logger.New(logger.Config{
//	    Env:   os.Getenv("APP_ENV"),   // "dev" o "prod"
//	    Level: os.Getenv("LOG_LEVEL"), // "debug", "info", "warn", "error"
//	})
//	defer log.Sync()
//
// En handlers/services (con contexto):
//
//	log := logger.From(ctx)
//	log.Info("processing request", logger.UserID(userID))
//
// Sin logger en el contexto, From(ctx) retorna un logger no-op.
package logger
