package http

import (
	"os"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
)

// SwaggerMiddleware devuelve el middleware de Swagger UI, o nil si el archivo
// swagger.json no existe. swagger.New entra en pánico cuando no puede leer el
// archivo, así que el caller solo lo registra si hay algo que servir.
func SwaggerMiddleware(filePath string) fiber.Handler {
	if _, err := os.Stat(filePath); err != nil {
		return nil
	}
	return swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: filePath,
		Path:     "docs",
		Title:    "Kardex API",
	})
}
