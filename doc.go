// Package greenroom is a scene manager and asset loading coordinator for
// [Ebitengine].
//
// Greenroom owns the screen-to-screen flow of a game: each screen is a
// [Scene], every scene names the asset bundles it needs, and the manager
// downloads, decodes, and caches those assets in the background before the
// scene is shown. The previous scene keeps running until the new one is
// ready, so the window never goes blank while assets stream in.
//
// # Quick start
//
// Describe assets in a manifest, hand it to a [Manager], request the first
// scene, and let [Run] create the window and game loop:
//
//	manifest := &greenroom.Manifest{}
//	manifest.AddBundle("title", map[string]string{
//		"logo":  "images/logo.png",
//		"theme": "audio/theme.ogg",
//	})
//
//	m := greenroom.NewManager(greenroom.Config{
//		Manifest:     manifest,
//		Fetcher:      &greenroom.FileFetcher{Root: "assets"},
//		ShowProgress: true,
//	})
//	m.ChangeScene(NewTitle(m))
//	if err := greenroom.Run(m, greenroom.RunConfig{
//		Title: "My Game", Width: 640, Height: 480,
//	}); err != nil {
//		log.Fatal(err)
//	}
//
// For full control over the window, [Manager] implements [ebiten.Game];
// call [ebiten.RunGame] yourself.
//
// # Scenes
//
// A [Scene] is built in two phases. Its constructor runs before any assets
// exist and must stay cheap; [Scene.FinishConstruction] runs once the
// scene's bundles are loaded and is where asset-dependent setup belongs.
// Scenes pull decoded assets from the manager's [Source]:
//
//	func (t *Title) FinishConstruction() error {
//		t.logo = t.mgr.Source().Image("logo")
//		return nil
//	}
//
// Scene changes are asynchronous. [Manager.ChangeScene] returns a
// [Transition] handle immediately and the swap happens on a later tick,
// once loading completes. Repeated calls are serialized in call order. If
// loading fails, the incoming scene is disposed, the current scene stays
// attached, and the error is reported on the [Transition].
//
// # Bundles
//
// The [Manifest] groups assets into named bundles, many-to-many: a bundle
// can name any asset and two bundles can share one. However bundles overlap
// and however often they are requested, each asset is fetched and decoded
// at most once per process. [Config.BackgroundLoadAll] pre-pulls every
// bundle speculatively; foreground loads reuse whatever it has cached.
//
// Decoding is keyed by file extension: PNG and JPEG become [ebiten.Image],
// WAV, Ogg Vorbis, and MP3 become [Sound], TTF and OTF become fonts, JSON
// is unmarshalled, and anything else stays raw bytes.
// [Source.RegisterDecoder] overrides or extends the set.
//
// [Ebitengine]: https://ebitengine.org
package greenroom
