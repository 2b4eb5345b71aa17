// Package pdf extracts per-page text from PDF files using poppler-glib.
package pdf

/*
#cgo pkg-config: glib-2.0 gio-2.0 poppler-glib
#cgo LDFLAGS: -pthread

#include <locale.h>
#include <poppler/glib/poppler.h>
#include <stdlib.h>

PopplerDocument *open_document(const char *filename, int *num_pages, char **errmsg){
	GFile* file = g_file_new_for_path(filename);
	if(file == NULL){
		return NULL;
	}

	GError* error = NULL;
	GBytes* bytes = g_file_load_bytes(file, NULL, NULL, &error);
	g_object_unref(file);

	if (error != NULL) {
		*errmsg = g_strdup(error->message);
		g_clear_error(&error);
		return NULL;
	}

	PopplerDocument *doc = poppler_document_new_from_bytes(bytes, NULL, &error);
	if (error) {
		*errmsg = g_strdup(error->message);
		g_clear_error(&error);
		g_bytes_unref(bytes);
		return NULL;
	}

	*num_pages = poppler_document_get_n_pages(doc);
	g_bytes_unref(bytes);
	return doc;
}

// Text of one page in a single cgo call. Caller frees with g_free.
char *page_text(PopplerDocument *doc, int page_num){
	PopplerPage *page = poppler_document_get_page(doc, page_num);
	if(page == NULL){
		return NULL;
	}

	char *text = poppler_page_get_text(page);
	g_object_unref(page);
	return text;
}
*/
import "C"
import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"unsafe"
)

// ErrOpen is returned when poppler cannot load a document.
var ErrOpen = errors.New("pdf: unable to open document")

// Document is an open PDF. PageText may be called from many goroutines;
// calls into poppler for the same document are serialized.
type Document struct {
	mu       sync.Mutex
	doc      *C.PopplerDocument
	Path     string
	numPages int
}

// SetLocale sets the C locale from the environment so poppler decodes UTF-8.
func SetLocale() {
	empty := C.CString("")
	defer C.free(unsafe.Pointer(empty))
	C.setlocale(C.LC_ALL, empty)
}

// Open loads the PDF at path.
func Open(path string) (*Document, error) {
	var c_path *C.char = C.CString(path)
	defer C.free(unsafe.Pointer(c_path))

	var num_pages C.int
	var c_err *C.char
	doc := C.open_document(c_path, &num_pages, &c_err)
	if doc == nil {
		msg := "unknown error"
		if c_err != nil {
			msg = C.GoString(c_err)
			C.g_free(C.gpointer(c_err))
		}
		return nil, fmt.Errorf("%w %s: %s", ErrOpen, path, msg)
	}

	return &Document{
		doc:      doc,
		Path:     path,
		numPages: int(num_pages),
	}, nil
}

// NumPages returns the number of pages in the document.
func (pdf *Document) NumPages() int {
	return pdf.numPages
}

// PageText returns the text of page i (zero-indexed), or "" when the page
// is out of range, the document is closed or poppler extracts nothing.
func (pdf *Document) PageText(i int) string {
	if i < 0 || i >= pdf.numPages {
		return ""
	}

	pdf.mu.Lock()
	if pdf.doc == nil {
		pdf.mu.Unlock()
		return ""
	}
	g_text := C.page_text(pdf.doc, C.int(i))
	pdf.mu.Unlock()

	if g_text == nil {
		return ""
	}
	defer C.g_free(C.gpointer(g_text))
	return CleanText(C.GoString(g_text))
}

// Close releases the document. It is safe to call more than once.
func (pdf *Document) Close() error {
	pdf.mu.Lock()
	defer pdf.mu.Unlock()

	if pdf.doc != nil {
		C.g_object_unref(C.gpointer(pdf.doc))
		pdf.doc = nil
	}
	return nil
}

// Geometric shapes and arrows poppler emits for bullets and form glyphs.
var skipTokens = func() *strings.Replacer {
	pairs := []string{"\u0089", "", "\u0080", ""}
	for r := rune(0x25B6); r <= 0x25FF; r++ {
		pairs = append(pairs, string(r), "")
	}
	return strings.NewReplacer(pairs...)
}()

// CleanText removes glyph noise from extracted page text.
func CleanText(text string) string {
	return skipTokens.Replace(text)
}
