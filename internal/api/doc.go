// Package api exposes the search engine over HTTP.
//
// Routes:
//
//	GET    /                              service banner
//	GET    /health                        liveness
//	GET    /metrics                       Prometheus metrics
//	GET|POST /api/pathfinding/route       run a search and return the path
//	GET    /api/pathfinding/heuristics    list algorithms and heuristics
//	GET    /api/pathfinding/sessions      list running sessions
//	GET    /api/pathfinding/sessions/:id  describe a running session
//	DELETE /api/pathfinding/sessions/:id  cancel a running session
//	GET    /graphs                        list stored graphs (?lat=&lon= to filter by location)
//	GET    /graphs/:place                 graph metadata (and data with ?include_data=true)
//	POST   /graphs/:place                 import a graph document
//	DELETE /graphs/:place                 remove a graph
//
// The route endpoint accepts its parameters either as a JSON body or as
// query/form parameters (place_name, start_node, end_node, algorithm,
// astar_heuristic, timeout). HTTP searches run without a visit sink; live streaming
// is served by the stream package, mounted on the same router.
package api
