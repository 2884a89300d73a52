package mongodb

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Vmatcha9/RTP-RecipeFinder/internal/shared/models"
)

// literal wraps a caller-supplied value so the server stores it verbatim.
// In aggregation expression context a bare string starting with "$" would
// otherwise be resolved as a field path.
func literal(v any) bson.D {
	return bson.D{{Key: "$literal", Value: v}}
}

// recentPipeline rewrites recentlyViewed in one update: drop any existing
// occurrence of externalID, prepend it, slice to limit. Run as an
// aggregation-pipeline update so the whole move-to-front is one atomic
// document write.
func recentPipeline(externalID string, limit int) mongo.Pipeline {
	id := literal(externalID)
	existing := bson.D{{Key: "$ifNull", Value: bson.A{"$recentlyViewed", bson.A{}}}}
	withoutID := bson.D{{Key: "$filter", Value: bson.D{
		{Key: "input", Value: existing},
		{Key: "cond", Value: bson.D{{Key: "$ne", Value: bson.A{"$$this", id}}}},
	}}}
	prepended := bson.D{{Key: "$concatArrays", Value: bson.A{bson.A{id}, withoutID}}}
	return mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "recentlyViewed", Value: bson.D{{Key: "$slice", Value: bson.A{prepended, limit}}}},
		}}},
	}
}

// notePipeline upserts a note entry in one update: replace the entry for
// recipeID when present, append otherwise. Keeps at most one entry per
// recipe id regardless of interleaving.
func notePipeline(recipeID, text string) mongo.Pipeline {
	id := literal(recipeID)
	entry := literal(models.RecipeNote{RecipeID: recipeID, Notes: text})
	existing := bson.D{{Key: "$ifNull", Value: bson.A{"$recipeNotes", bson.A{}}}}
	hasEntry := bson.D{{Key: "$in", Value: bson.A{
		id,
		bson.D{{Key: "$ifNull", Value: bson.A{"$recipeNotes.recipeId", bson.A{}}}},
	}}}
	replaced := bson.D{{Key: "$map", Value: bson.D{
		{Key: "input", Value: existing},
		{Key: "in", Value: bson.D{{Key: "$cond", Value: bson.A{
			bson.D{{Key: "$eq", Value: bson.A{"$$this.recipeId", id}}},
			entry,
			"$$this",
		}}}},
	}}}
	appended := bson.D{{Key: "$concatArrays", Value: bson.A{existing, bson.A{entry}}}}
	return mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "recipeNotes", Value: bson.D{{Key: "$cond", Value: bson.A{hasEntry, replaced, appended}}}},
		}}},
	}
}
