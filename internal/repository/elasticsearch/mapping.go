package elasticsearch

// DefaultIndexName is the default Elasticsearch index used for product documents.
const DefaultIndexName = "fitzdo_products"

// buildIndexMapping returns the JSON mapping for the products index. Text
// fields carry keyword sub-fields so substring matching can run as
// case-insensitive wildcards with the same inclusion as the other stores.
// The keyword sub-fields have no ignore_above, so long values stay
// searchable.
func buildIndexMapping() string {
	return `{
  "settings": {
    "number_of_shards": 1,
    "number_of_replicas": 0
  },
  "mappings": {
    "dynamic": "strict",
    "properties": {
      "id":              { "type": "keyword" },
      "seq":             { "type": "long" },
      "title":           { "type": "text", "fields": { "keyword": { "type": "keyword" } } },
      "brand":           { "type": "text", "fields": { "keyword": { "type": "keyword" } } },
      "category":        { "type": "text", "fields": { "keyword": { "type": "keyword" } } },
      "price":           { "type": "double" },
      "mrp":             { "type": "double" },
      "rating":          { "type": "double" },
      "ratingCount":     { "type": "integer" },
      "discountPercent": { "type": "double" },
      "tags":            { "type": "keyword" },
      "imageUrl":        { "type": "keyword", "index": false },
      "deliveryInfo":    { "type": "text", "index": false },
      "description":     { "type": "text" },
      "inStock":         { "type": "boolean" },
      "createdAt":       { "type": "date" },
      "updatedAt":       { "type": "date" }
    }
  }
}`
}
