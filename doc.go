// Package persistpager builds uniform pagers over swappable persistence backends.
//
// Overview
//
// A PagerProvider produces a Pager for one object class. Every provide call
// runs the same pipeline:
//   - merge the per-call override over the base Config (shallow, override wins);
//   - resolve the Manager of the class through a ManagerRegistry;
//   - resolve the class Repository and invoke the query builder method named by
//     the "query_builder_method" key;
//   - wrap the query builder into a backend PagerAdapter and a Pager;
//   - hand manager, pager and effective Config to a ListenerRegistrar.
//
// Backends
//   - orm: gorm query builders (*gorm.DB).
//   - odm: DynamoDB queries (*dynamodb.QueryInput).
//   - phpcr: content repository nodes through bun (*bun.SelectQuery).
//   - search: Elasticsearch queries (*search.Query).
//
// Repositories expose query builder methods through a name to closure table
// (QueryBuilderMethods), so selecting a custom method per call needs no
// reflection and an unknown name fails with ErrUnknownMethod.
package persistpager
