package domain

const (
	// MaxResults — целевое число элементов в выдаче explore.
	MaxResults = 6
	// MaxAssetsWithGeneration — сколько найденных ассетов берём, если их больше, чем нужно для генерации.
	MaxAssetsWithGeneration = 3
)

// Split решает, сколько найденных ассетов использовать и сколько изображений сгенерировать.
// found <= 3: все найденные плюс 6-found сгенерированных; found > 3: ровно 3 и 3.
func Split(found int) (assetsToUse, imagesToGenerate int) {
	if found < 0 {
		found = 0
	}

	if found <= MaxAssetsWithGeneration {
		return found, MaxResults - found
	}

	return MaxAssetsWithGeneration, MaxResults - MaxAssetsWithGeneration
}
