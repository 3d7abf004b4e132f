// Package transfer pushes a single local file to a CrossPoint reader over
// its websocket upload endpoint.
//
// A transfer is one websocket session:
//
//	client: START:<filename>:<size>:<path>   (text)
//	reader: READY                            (text)
//	client: <chunk> <chunk> ...              (binary, ChunkSize bytes each)
//	reader: PROGRESS:<received>:<total>      (text, optional, ignored)
//	reader: DONE | ERROR:<reason>            (text)
//
// Filename and path are percent-encoded in the START message: '%' becomes
// %25 and ':' becomes %3A, so titles such as "Dune: Messiah.epub" keep the
// four fields intact. Readers decode them with standard path unescaping.
//
// Errors are returned as *Error values classified by ErrorType so callers
// can print a short message and a troubleshooting hint.
package transfer
