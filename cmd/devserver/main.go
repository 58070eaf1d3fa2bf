package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/joho/godotenv"

	"github.com/yourorg/fitclubcl/internal/devserver"
)

func main() {
	_ = godotenv.Load()

	srv := devserver.New()
	app := srv.App()
	app.Use(logger.New())

	if os.Getenv("DEV_SEED") != "false" {
		srv.Seed()
	}

	// ============================================================================
	// GRACEFUL SHUTDOWN
	// ============================================================================
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Println("\n🛑 Señal de terminación recibida, cerrando servidor...")
		if err := app.Shutdown(); err != nil {
			log.Printf("⚠️  Error cerrando servidor: %v", err)
		}
		log.Println("✅ Servidor cerrado correctamente")
		os.Exit(0)
	}()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("🚀 Dev server de FitClub escuchando en :%s", port)
	log.Println("📍 Endpoints disponibles:")
	log.Println("   ═══ AUTENTICACIÓN ═══")
	log.Println("   POST /auth/login                      - Login con email y contraseña")
	log.Println("   POST /auth/register                   - Registro (OTP va al log)")
	log.Println("   POST /auth/verify-email               - Verificar email con OTP")
	log.Println("   POST /auth/forgot-password            - Pedir OTP de recuperación")
	log.Println("   POST /auth/reset-password             - Resetear contraseña con OTP")
	log.Println("")
	log.Println("   ═══ PERFIL Y NOTIFICACIONES (bearer token) ═══")
	log.Println("   GET  /me                              - Perfil del usuario")
	log.Println("   GET  /notifications/pending           - Notificaciones pendientes")
	log.Println("   GET  /notifications/sent              - Notificaciones ya mostradas")
	log.Println("   GET  /notifications/unread-count      - Contador de no leídas")
	log.Println("   PUT  /notifications/:id/received      - Confirmar recepción")
	log.Println("   PUT  /notifications/:id/read          - Marcar como leída")
	log.Println("")
	log.Println("💡 Presiona Ctrl+C para detener")

	if err := app.Listen(":" + port); err != nil {
		log.Fatal(err)
	}
}
