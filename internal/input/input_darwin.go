//go:build darwin

package input

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework ApplicationServices -framework Foundation
#import <ApplicationServices/ApplicationServices.h>
#import <Foundation/Foundation.h>
#include <stdlib.h>

void typeText(const char* text) {
    NSString *str = [NSString stringWithUTF8String:text];

    for (NSUInteger i = 0; i < [str length]; i++) {
        unichar c = [str characterAtIndex:i];

        CGEventRef keyDown = CGEventCreateKeyboardEvent(NULL, 0, true);
        CGEventRef keyUp = CGEventCreateKeyboardEvent(NULL, 0, false);

        CGEventKeyboardSetUnicodeString(keyDown, 1, &c);
        CGEventKeyboardSetUnicodeString(keyUp, 1, &c);

        CGEventPost(kCGHIDEventTap, keyDown);
        CGEventPost(kCGHIDEventTap, keyUp);

        CFRelease(keyDown);
        CFRelease(keyUp);
    }
}

void pressKey(CGKeyCode code, int times) {
    for (int i = 0; i < times; i++) {
        CGEventRef keyDown = CGEventCreateKeyboardEvent(NULL, code, true);
        CGEventRef keyUp = CGEventCreateKeyboardEvent(NULL, code, false);

        CGEventPost(kCGHIDEventTap, keyDown);
        CGEventPost(kCGHIDEventTap, keyUp);

        CFRelease(keyDown);
        CFRelease(keyUp);
    }
}
*/
import "C"

import (
	"fmt"
	"unsafe"
)

// Виртуальные коды клавиш macOS (Carbon HIToolbox/Events.h).
const (
	kVKReturn = 36
	kVKSpace  = 49
	kVKDelete = 51
)

type darwinTyper struct{}

func newTyper() (Typer, error) {
	return &darwinTyper{}, nil
}

func (t *darwinTyper) Type(text string) error {
	cstr := C.CString(text)
	defer C.free(unsafe.Pointer(cstr))
	C.typeText(cstr)
	return nil
}

func (t *darwinTyper) Erase(n int) error {
	if n > 0 {
		C.pressKey(C.CGKeyCode(kVKDelete), C.int(n))
	}
	return nil
}

func (t *darwinTyper) Press(key Key) error {
	switch key {
	case KeySpace:
		C.pressKey(C.CGKeyCode(kVKSpace), 1)
	case KeyReturn:
		C.pressKey(C.CGKeyCode(kVKReturn), 1)
	default:
		return fmt.Errorf("неподдерживаемая клавиша: %v", key)
	}
	return nil
}
