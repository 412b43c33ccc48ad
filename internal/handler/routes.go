package handler

import "github.com/go-chi/chi/v5"

// UploadRoutes registers the multipart upload endpoints. They sit outside
// the default JSON body limit; each handler applies its own size cap.
func UploadRoutes(r chi.Router, items *ItemsHandler, displays *DisplaysHandler) {
	r.Post("/items/{itemID}/upload-image", items.UploadImage)
	r.Post("/displays/{displayID}/upload-media", displays.UploadMedia)
}
