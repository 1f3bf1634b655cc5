// Package overlay persists the user-authored part of a diagram: the link list
// and the position overlay.
//
// The overlay is a pair of records in a key/value [Store]. Each record holds
// a complete JSON collection and is replaced wholesale on every write:
//
//	container "mc-link-data"
//	├── key "linkDataList"     → []diagram.Link
//	└── key "locationDataList" → []diagram.Placement
//
// Stores:
//   - [MemoryStore]: in-process map, for tests and previews
//   - [FileStore]: one JSON file per record under a directory, for the CLI
//   - [RedisStore]: Redis strings, for shared deployments
//   - [MongoStore]: one document per record, upserted by container and key
//   - [SQLStore]: a SQLite table managed through GORM and goose migrations
//   - [APIStore]: the platform custom-objects API
//
// An absent record is not an error; [Store.Get] returns nil, nil and the
// [Overlay] reads it as an empty collection.
package overlay
