// Package hostbridge exposes the extension to the game host through the
// RVExtension C entry points.
package hostbridge

/*
#include <stdlib.h>
#include <stdio.h>
#include <string.h>
*/
import "C"
import (
	"unsafe"
)

// called by the host to get the version of the extension
//
//export RVExtensionVersion
func RVExtensionVersion(output *C.char, outputsize C.size_t) {
	replyToSyncCall(Version(), output, outputsize)
}

// called by the host as: "extensionName" callExtension "command"
//
//export RVExtension
func RVExtension(output *C.char, outputsize C.size_t, input *C.char) {
	replyToSyncCall(Call(C.GoString(input), nil), output, outputsize)
}

// called by the host as: "extensionName" callExtension ["command", ["data"]]
//
//export RVExtensionArgs
func RVExtensionArgs(output *C.char, outputsize C.size_t, input *C.char, argv **C.char, argc C.int) {
	args := parseArgsFromC(argv, argc)
	if args == nil {
		args = []string{}
	}
	replyToSyncCall(Call(C.GoString(input), args), output, outputsize)
}

// parseArgsFromC converts C argv array to Go string slice
func parseArgsFromC(argv **C.char, argc C.int) []string {
	if argc <= 0 || argv == nil {
		return nil
	}
	return goStrings(unsafe.Slice(argv, int(argc)))
}

func goStrings(ptrs []*C.char) []string {
	data := make([]string, 0, len(ptrs))
	for _, p := range ptrs {
		data = append(data, C.GoString(p))
	}
	return data
}

// replyToSyncCall copies response into the host's buffer, truncating to outputsize.
func replyToSyncCall(response string, output *C.char, outputsize C.size_t) {
	if outputsize == 0 {
		return
	}
	result := C.CString(response)
	defer C.free(unsafe.Pointer(result))
	var size = C.strlen(result) + 1
	if size > outputsize {
		size = outputsize
	}
	C.memmove(unsafe.Pointer(output), unsafe.Pointer(result), size)
	// keep the reply terminated when truncated
	*(*C.char)(unsafe.Add(unsafe.Pointer(output), size-1)) = 0
}
