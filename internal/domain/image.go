package domain

// Image описывает объект изображения, который кладётся в S3
type Image struct {
	ObjectKey    string
	Bytes        []byte
	ContentType  string
	CacheControl string
}

func NewImage(objectKey string, data []byte, contentType string, cacheControl string) *Image {
	return &Image{
		ObjectKey:    objectKey,
		Bytes:        data,
		ContentType:  contentType,
		CacheControl: cacheControl,
	}
}

// Size возвращает размер изображения в байтах.
func (i *Image) Size() int64 {
	return int64(len(i.Bytes))
}
