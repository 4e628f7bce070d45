package demoserver

// PageVersion is one rendition of a page.
type PageVersion struct {
	HTML        string
	ContentType string
}

// PageDefinition holds all versions of a single page. Version 1 breaks the
// criteria listed in Description; version 2 fixes them.
type PageDefinition struct {
	Path        string
	Description string
	Versions    map[int]PageVersion
}

// GetAllPages returns all demo page definitions.
func GetAllPages() []PageDefinition {
	return []PageDefinition{
		getHomePage(),
		getGalleryPage(),
		getContactPage(),
		getArticlesPage(),
	}
}

const nav = `<nav>
    <a href="/">Home</a>
    <a href="/gallery">Gallery</a>
    <a href="/contact">Contact</a>
    <a href="/articles">Articles</a>
</nav>`

// ===== HOME PAGE =====
func getHomePage() PageDefinition {
	return PageDefinition{
		Path:        "/",
		Description: "Document metadata and images: 1.1.1, 6.2.1, 8.3, 8.5",
		Versions: map[int]PageVersion{
			1: {HTML: `<!DOCTYPE html>
<html>
<head></head>
<body>
    <h1>Welcome to the demo site</h1>
    ` + nav + `
    <img src="/static/banner.png">
    <a href="/news"><img src="/static/news.png"></a>
</body>
</html>`},
			2: {HTML: `<!DOCTYPE html>
<html lang="en">
<head><title>Demo site - Home</title></head>
<body>
    <h1>Welcome to the demo site</h1>
    ` + nav + `
    <img src="/static/banner.png" alt="Demo site banner">
    <a href="/news"><img src="/static/news.png" alt="Latest news"></a>
</body>
</html>`},
		},
	}
}

// ===== GALLERY PAGE =====
func getGalleryPage() PageDefinition {
	return PageDefinition{
		Path:        "/gallery",
		Description: "Image maps, SVG and frames: 1.1.2, 1.1.5, 2.1.1, 2.2.1",
		Versions: map[int]PageVersion{
			1: {HTML: `<!DOCTYPE html>
<html lang="en">
<head><title>Gallery</title></head>
<body>
    <h1>Gallery</h1>
    ` + nav + `
    <img src="/static/map.png" alt="Floor plan" usemap="#plan">
    <map name="plan">
        <area shape="rect" coords="0,0,50,50" href="/rooms/1">
    </map>
    <svg role="img" width="10" height="10"><circle r="5"></circle></svg>
    <iframe src="/static/video.html"></iframe>
    <iframe src="/static/map.html" title="iframe"></iframe>
</body>
</html>`},
			2: {HTML: `<!DOCTYPE html>
<html lang="en">
<head><title>Gallery</title></head>
<body>
    <h1>Gallery</h1>
    ` + nav + `
    <img src="/static/map.png" alt="Floor plan" usemap="#plan">
    <map name="plan">
        <area shape="rect" coords="0,0,50,50" href="/rooms/1" alt="Room 1">
    </map>
    <svg role="img" aria-label="Status: online" width="10" height="10"><circle r="5"></circle></svg>
    <iframe src="/static/video.html" title="Product presentation video"></iframe>
    <iframe src="/static/map.html" title="Map of our offices"></iframe>
</body>
</html>`},
		},
	}
}

// ===== CONTACT PAGE =====
func getContactPage() PageDefinition {
	return PageDefinition{
		Path:        "/contact",
		Description: "Form labels: 11.1.1, 11.1.2",
		Versions: map[int]PageVersion{
			1: {HTML: `<!DOCTYPE html>
<html lang="en">
<head><title>Contact</title></head>
<body>
    <h1>Contact us</h1>
    ` + nav + `
    <form action="/search" method="get">
        <label for="q">Search</label>
        <input type="search" name="q">
    </form>
    <form action="/contact" method="post">
        <input type="text" name="name" placeholder="Your name">
        <label>Email</label>
        <input type="email" name="email">
        <textarea name="message"></textarea>
        <button type="submit">Send</button>
    </form>
</body>
</html>`},
			2: {HTML: `<!DOCTYPE html>
<html lang="en">
<head><title>Contact</title></head>
<body>
    <h1>Contact us</h1>
    ` + nav + `
    <form action="/search" method="get">
        <label for="q">Search</label>
        <input type="search" id="q" name="q">
    </form>
    <form action="/contact" method="post">
        <label for="name">Name</label>
        <input type="text" id="name" name="name">
        <label for="email">Email</label>
        <input type="email" id="email" name="email">
        <textarea name="message" aria-label="Message"></textarea>
        <button type="submit">Send</button>
    </form>
</body>
</html>`},
		},
	}
}

// ===== ARTICLES PAGE =====
func getArticlesPage() PageDefinition {
	return PageDefinition{
		Path:        "/articles",
		Description: "Heading hierarchy and colour contrast: 3.2.x, 9.1.1, 9.1.3",
		Versions: map[int]PageVersion{
			1: {HTML: `<!DOCTYPE html>
<html lang="en">
<head><title>Articles</title></head>
<body>
    <h1>Articles</h1>
    ` + nav + `
    <h3>Latest</h3>
    <div role="heading">Archive</div>
    <p style="color: #bbbbbb; background-color: #ffffff">Published every Monday.</p>
    <p style="color: #cccccc; background-color: #ffffff; font-size: 30px; font-weight: bold">Subscribe</p>
</body>
</html>`},
			2: {HTML: `<!DOCTYPE html>
<html lang="en">
<head><title>Articles</title></head>
<body>
    <h1>Articles</h1>
    ` + nav + `
    <h2>Latest</h2>
    <div role="heading" aria-level="2">Archive</div>
    <p style="color: #333333; background-color: #ffffff">Published every Monday.</p>
    <p style="color: #555555; background-color: #ffffff; font-size: 30px; font-weight: bold">Subscribe</p>
</body>
</html>`},
		},
	}
}
