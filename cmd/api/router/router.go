package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"feedboard/cmd/api/auth"
	"feedboard/cmd/api/graph"
	"feedboard/cmd/api/handlers"
	"feedboard/cmd/api/middleware"
	"feedboard/cmd/api/storage"
	"feedboard/repositories"
)

// New wires the full gateway pipeline: request logging, terminal error
// handling, CORS, the soft auth gate, and finally the upload endpoint,
// the GraphQL endpoint and static image serving.
func New(database *mongo.Database, jwtMgr *auth.JWTManager, store *storage.Store) (*gin.Engine, error) {
	r := gin.New()
	r.Use(middleware.RequestLogging())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORS())
	r.Use(middleware.Auth(jwtMgr))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		if err := database.RunCommand(c.Request.Context(), bson.D{{Key: "ping", Value: 1}}).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "mongo": "down", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Uploaded images are served straight from the upload directory.
	r.Static("/images", store.Dir())

	r.PUT("/post-image", handlers.UploadImageHandler(store))

	users := repositories.NewUserRepository(database)
	posts := repositories.NewPostRepository(database)
	resolver := graph.NewResolver(users, posts, store, jwtMgr)
	schema, err := graph.NewSchema(resolver)
	if err != nil {
		return nil, err
	}
	gq := graph.Handler(schema)
	r.GET("/graphql", gq)
	r.POST("/graphql", gq)

	return r, nil
}
