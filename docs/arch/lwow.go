// Package arch documents how the word-association service is put together.
//
// # Request flow
//
// An HTTP request enters gin in internal/web, passes recovery, the request
// logger, CORS and the per-client throttle, and reaches a handler in
// internal/web/lwow/controller. Handlers decode strict JSON, then call the
// service layer, which validates input and talks to the engine:
//
//	controller -> service -> assoc.Generator -> assoc.Selector -> assoc.Store
//	                                                    |
//	                                        dao.CachedStore (redis, optional)
//	                                                    |
//	                                        dao.SQLStore (sqlite | postgres)
//
// # Engine
//
// library/assoc is the only package with real algorithmic content. For each
// of the 26 cues the selector fills a candidate bag from the cue's two
// associations, sometimes adds the associations of those words at a lower
// weight, biases the bag toward alliteration, the favorite letter, shorter
// words and unused words, and draws one candidate. Unknown cues fall back to
// a random entry sharing the cue's first letter. The engine never fails: it
// answers "blank" for cues with no letters or digits and "idk" when nothing
// matches at all.
//
// Store errors are logged and treated as a missing entry. The service checks
// that the table is reachable and non-empty before each generation and
// reports "engine unavailable" otherwise.
//
// # Games
//
// A game starts with a favorite letter and runs a fixed number of rounds of
// 26 words. Every round but the last is answered by the engine, using all
// earlier engine answers as the used-word history. Sessions are JSON blobs
// kept in a SQL table or in redis, both with a TTL.
//
// # Commands
//
//	lwow api       serve HTTP
//	lwow migrate   create tables, purge expired sessions
//	lwow import    load cue,assoc1,assoc2 rows from CSV
//	lwow generate  answer 26 cues once and print them
//	lwow tui       play in the terminal
package arch
