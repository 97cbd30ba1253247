package controllers

import (
	"go.mongodb.org/mongo-driver/mongo/options"
)

// findAfter makes FindOneAndUpdate return the post-update document.
func findAfter() *options.FindOneAndUpdateOptions {
	return options.FindOneAndUpdate().SetReturnDocument(options.After)
}
