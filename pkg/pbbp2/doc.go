// Package pbbp2 implements the binary codec for the frames exchanged on the
// long-connection push channel.
//
// The wire schema is fixed and shared with the server:
//
//	message Header {
//	  required string key   = 1;
//	  required string value = 2;
//	}
//
//	message Frame {
//	  required uint64 SeqID            = 1;
//	  required uint64 LogID            = 2;
//	  required int32  service          = 3;
//	  required int32  method           = 4;
//	  repeated Header headers          = 5;
//	  optional string payload_encoding = 6;
//	  optional string payload_type     = 7;
//	  optional bytes  payload          = 8;
//	  optional string LogIDNew         = 9;
//	}
//
// Field numbers and wire types must never change. Encoding writes fields in
// tag order; decoding skips unknown tags and fails with a *ProtocolError when
// a required field is missing or the input is malformed.
//
// Besides the binary form the package converts frames to and from loosely
// typed objects (map[string]any) for JSON interchange, and validates such
// objects with VerifyFrame before they are trusted.
//
// All functions are pure and safe for concurrent use.
package pbbp2
