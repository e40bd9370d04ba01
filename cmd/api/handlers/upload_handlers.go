package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"feedboard/apperr"
	"feedboard/cmd/api/auth"
	"feedboard/cmd/api/storage"
	"feedboard/cmd/internal/logger"
)

// UploadImageHandler handles PUT /post-image. GraphQL itself only speaks
// JSON, so image binaries arrive through this REST-style side channel and
// the resulting filePath is sent along in the subsequent mutation.
//
// Outcomes:
//   - not authenticated           -> 401 via the error middleware
//   - no file, or rejected type   -> 200 {"message":"No file provided!"}
//   - stored                      -> 201 {"message":"File stored","filePath":...}
func UploadImageHandler(store *storage.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := auth.IdentityFrom(c.Request.Context())
		if !id.Authenticated {
			_ = c.Error(apperr.New(http.StatusUnauthorized, "Not authenticated!"))
			c.Abort()
			return
		}

		fh, err := c.FormFile("image")
		if err != nil || !storage.Allowed(fh.Header.Get("Content-Type")) {
			// A disallowed content type is not an error: the part is
			// dropped and the client observes an empty-effect success.
			c.JSON(http.StatusOK, gin.H{"message": "No file provided!"})
			return
		}

		// Best-effort cleanup of the image this upload replaces. Runs
		// detached so a slow or failing delete never affects the request.
		if oldPath := c.PostForm("oldPath"); oldPath != "" {
			go func() {
				if err := store.Remove(oldPath); err != nil {
					logger.Log.Warnf("failed to remove replaced image %s: %v", oldPath, err)
				}
			}()
		}

		stored, err := store.Save(fh)
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"message":  "File stored",
			"filePath": stored.Path,
		})
	}
}
