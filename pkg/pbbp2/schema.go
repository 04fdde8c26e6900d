package pbbp2

import (
	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
)

// DefaultTypeURLPrefix is prepended to message names by TypeURL.
const DefaultTypeURLPrefix = "type.googleapis.com"

const schemaPath = "pbbp2.proto"

// Field numbers. These are a compatibility contract with the server.
const (
	headerKeyNumber   protowire.Number = 1
	headerValueNumber protowire.Number = 2

	frameSeqIDNumber           protowire.Number = 1
	frameLogIDNumber           protowire.Number = 2
	frameServiceNumber         protowire.Number = 3
	frameMethodNumber          protowire.Number = 4
	frameHeadersNumber         protowire.Number = 5
	framePayloadEncodingNumber protowire.Number = 6
	framePayloadTypeNumber     protowire.Number = 7
	framePayloadNumber         protowire.Number = 8
	frameLogIDNewNumber        protowire.Number = 9
)

// schema is built once at package init and never mutated afterwards.
var (
	schemaFiles *protoregistry.Files
	schemaFile  protoreflect.FileDescriptor
)

func init() {
	fd, err := protodesc.NewFile(schemaProto(), nil)
	if err != nil {
		panic("pbbp2: invalid schema: " + err.Error())
	}

	files := new(protoregistry.Files)
	if err := files.RegisterFile(fd); err != nil {
		panic("pbbp2: registering schema: " + err.Error())
	}

	schemaFile = fd
	schemaFiles = files
}

// FileDescriptor returns the descriptor of the pbbp2 schema.
func FileDescriptor() protoreflect.FileDescriptor {
	return schemaFile
}

// HeaderDescriptor returns the descriptor of the Header message.
func HeaderDescriptor() protoreflect.MessageDescriptor {
	return schemaFile.Messages().ByName("Header")
}

// FrameDescriptor returns the descriptor of the Frame message.
func FrameDescriptor() protoreflect.MessageDescriptor {
	return schemaFile.Messages().ByName("Frame")
}

// FindMessage looks up a message descriptor of the schema by full name.
func FindMessage(name protoreflect.FullName) (protoreflect.MessageDescriptor, bool) {
	desc, err := schemaFiles.FindDescriptorByName(name)
	if err != nil {
		return nil, false
	}

	md, ok := desc.(protoreflect.MessageDescriptor)

	return md, ok
}

// TypeURL formats the type URL of a schema message. An empty prefix selects
// DefaultTypeURLPrefix.
func TypeURL(md protoreflect.MessageDescriptor, prefix string) string {
	if prefix == "" {
		prefix = DefaultTypeURLPrefix
	}

	return prefix + "/" + string(md.FullName())
}

func schemaProto() *descriptorpb.FileDescriptorProto {
	required := descriptorpb.FieldDescriptorProto_LABEL_REQUIRED.Enum()
	optional := descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum()
	repeated := descriptorpb.FieldDescriptorProto_LABEL_REPEATED.Enum()

	field := func(name string, number protowire.Number, label *descriptorpb.FieldDescriptorProto_Label,
		typ descriptorpb.FieldDescriptorProto_Type, typeName string,
	) *descriptorpb.FieldDescriptorProto {
		f := &descriptorpb.FieldDescriptorProto{
			Name:   proto.String(name),
			Number: proto.Int32(int32(number)),
			Label:  label,
			Type:   typ.Enum(),
		}
		if typeName != "" {
			f.TypeName = proto.String(typeName)
		}

		return f
	}

	return &descriptorpb.FileDescriptorProto{
		Name:    proto.String(schemaPath),
		Package: proto.String("pbbp2"),
		Syntax:  proto.String("proto2"),
		MessageType: []*descriptorpb.DescriptorProto{
			{
				Name: proto.String("Header"),
				Field: []*descriptorpb.FieldDescriptorProto{
					field("key", headerKeyNumber, required, descriptorpb.FieldDescriptorProto_TYPE_STRING, ""),
					field("value", headerValueNumber, required, descriptorpb.FieldDescriptorProto_TYPE_STRING, ""),
				},
			},
			{
				Name: proto.String("Frame"),
				Field: []*descriptorpb.FieldDescriptorProto{
					field("SeqID", frameSeqIDNumber, required, descriptorpb.FieldDescriptorProto_TYPE_UINT64, ""),
					field("LogID", frameLogIDNumber, required, descriptorpb.FieldDescriptorProto_TYPE_UINT64, ""),
					field("service", frameServiceNumber, required, descriptorpb.FieldDescriptorProto_TYPE_INT32, ""),
					field("method", frameMethodNumber, required, descriptorpb.FieldDescriptorProto_TYPE_INT32, ""),
					field("headers", frameHeadersNumber, repeated, descriptorpb.FieldDescriptorProto_TYPE_MESSAGE, ".pbbp2.Header"),
					field("payload_encoding", framePayloadEncodingNumber, optional, descriptorpb.FieldDescriptorProto_TYPE_STRING, ""),
					field("payload_type", framePayloadTypeNumber, optional, descriptorpb.FieldDescriptorProto_TYPE_STRING, ""),
					field("payload", framePayloadNumber, optional, descriptorpb.FieldDescriptorProto_TYPE_BYTES, ""),
					field("LogIDNew", frameLogIDNewNumber, optional, descriptorpb.FieldDescriptorProto_TYPE_STRING, ""),
				},
			},
		},
	}
}
