package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newExtractionFixture() (*ExtractionService, *MockPageRenderer, *MockOCREngine, *MockConverter) {
	renderer := new(MockPageRenderer)
	engine := new(MockOCREngine)
	converter := new(MockConverter)
	service := NewExtractionService(renderer, engine, converter, testLogger())
	return service, renderer, engine, converter
}

func TestSupportedMediaType(t *testing.T) {
	assert.True(t, SupportedMediaType(MediaTypePDF))
	assert.True(t, SupportedMediaType(MediaTypeDoc))
	assert.True(t, SupportedMediaType(MediaTypeDocx))
	assert.True(t, SupportedMediaType(MediaTypeJPEG))
	assert.True(t, SupportedMediaType(MediaTypePNG))

	assert.False(t, SupportedMediaType("text/html"))
	assert.False(t, SupportedMediaType("application/zip"))
	assert.False(t, SupportedMediaType(""))
}

func TestExtractRejectsUnsupportedTypeBeforeAnyWork(t *testing.T) {
	service, renderer, engine, converter := newExtractionFixture()

	text, err := service.Extract(context.Background(), []byte("payload"), "text/html")

	assert.Empty(t, text)
	assert.ErrorIs(t, err, ErrUnsupportedMediaType)
	renderer.AssertNotCalled(t, "RenderPages", mock.Anything, mock.Anything)
	engine.AssertNotCalled(t, "Recognize", mock.Anything, mock.Anything)
	converter.AssertNotCalled(t, "ToPDF", mock.Anything, mock.Anything, mock.Anything)
}

func TestExtractPDFPreservesPageOrder(t *testing.T) {
	service, renderer, engine, _ := newExtractionFixture()

	pages := [][]byte{[]byte("p1"), []byte("p2"), []byte("p3")}
	renderer.On("RenderPages", mock.Anything, mock.Anything).Return(pages, nil)
	engine.On("Recognize", mock.Anything, []byte("p1")).Return("first page", nil)
	engine.On("Recognize", mock.Anything, []byte("p2")).Return("second page", nil)
	engine.On("Recognize", mock.Anything, []byte("p3")).Return("third page", nil)

	text, err := service.Extract(context.Background(), []byte("%PDF"), MediaTypePDF)

	assert.NoError(t, err)
	assert.Equal(t, "first page\nsecond page\nthird page", text)
	engine.AssertNumberOfCalls(t, "Recognize", 3)
}

func TestExtractPDFAnyPageFailureIsFatal(t *testing.T) {
	service, renderer, engine, _ := newExtractionFixture()

	pages := [][]byte{[]byte("p1"), []byte("p2")}
	renderer.On("RenderPages", mock.Anything, mock.Anything).Return(pages, nil)
	engine.On("Recognize", mock.Anything, []byte("p1")).Return("fine", nil).Maybe()
	engine.On("Recognize", mock.Anything, []byte("p2")).Return("", errors.New("glyph soup"))

	text, err := service.Extract(context.Background(), []byte("%PDF"), MediaTypePDF)

	assert.Empty(t, text)
	assert.ErrorIs(t, err, ErrExtractionFailed)
}

func TestExtractPDFRenderFailure(t *testing.T) {
	service, renderer, engine, _ := newExtractionFixture()

	renderer.On("RenderPages", mock.Anything, mock.Anything).Return(nil, errors.New("corrupt xref"))

	text, err := service.Extract(context.Background(), []byte("not a pdf"), MediaTypePDF)

	assert.Empty(t, text)
	assert.ErrorIs(t, err, ErrExtractionFailed)
	engine.AssertNotCalled(t, "Recognize", mock.Anything, mock.Anything)
}

func TestExtractWordConvertsThenRecognizes(t *testing.T) {
	service, renderer, engine, converter := newExtractionFixture()

	converter.On("ToPDF", mock.Anything, []byte("docx bytes"), "docx").Return([]byte("pdf bytes"), nil)
	renderer.On("RenderPages", mock.Anything, []byte("pdf bytes")).Return([][]byte{[]byte("p1")}, nil)
	engine.On("Recognize", mock.Anything, []byte("p1")).Return("contract text", nil)

	text, err := service.Extract(context.Background(), []byte("docx bytes"), MediaTypeDocx)

	assert.NoError(t, err)
	assert.Equal(t, "contract text", text)
	converter.AssertExpectations(t)
}

func TestExtractWordConversionFailure(t *testing.T) {
	service, renderer, _, converter := newExtractionFixture()

	converter.On("ToPDF", mock.Anything, mock.Anything, "doc").Return(nil, errors.New("soffice exited 1"))

	text, err := service.Extract(context.Background(), []byte("doc bytes"), MediaTypeDoc)

	assert.Empty(t, text)
	assert.ErrorIs(t, err, ErrExtractionFailed)
	renderer.AssertNotCalled(t, "RenderPages", mock.Anything, mock.Anything)
}

func TestExtractImageGoesStraightToRecognition(t *testing.T) {
	service, renderer, engine, converter := newExtractionFixture()

	engine.On("Recognize", mock.Anything, []byte("jpeg bytes")).Return("receipt total 42.00", nil)

	text, err := service.Extract(context.Background(), []byte("jpeg bytes"), MediaTypeJPEG)

	assert.NoError(t, err)
	assert.Equal(t, "receipt total 42.00", text)
	renderer.AssertNotCalled(t, "RenderPages", mock.Anything, mock.Anything)
	converter.AssertNotCalled(t, "ToPDF", mock.Anything, mock.Anything, mock.Anything)
}

func TestExtractImageRecognitionFailure(t *testing.T) {
	service, _, engine, _ := newExtractionFixture()

	engine.On("Recognize", mock.Anything, mock.Anything).Return("", errors.New("unreadable"))

	text, err := service.Extract(context.Background(), []byte("png bytes"), MediaTypePNG)

	assert.Empty(t, text)
	assert.ErrorIs(t, err, ErrExtractionFailed)
}
